// Package server exposes the engine registry over gRPC. Messages are
// google.protobuf.Struct values, so no generated code is involved.
package server

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ultraschall/enginehub/internal/engine"
	"github.com/ultraschall/enginehub/internal/mapsafe"
	"github.com/ultraschall/enginehub/internal/preset"
	"github.com/ultraschall/enginehub/internal/registry"
	"github.com/ultraschall/enginehub/internal/xfs"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "enginehub.v1.EngineRegistry"

// EngineRegistryServer is the server API for the engine registry service.
type EngineRegistryServer interface {
	ListEngines(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetEngine(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EngineAt(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddEngine(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateEngine(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveEngine(context.Context, *structpb.Struct) (*structpb.Struct, error)
	NewPreset(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SavePreset(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LoadPreset(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LoadConfiguration(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SaveConfiguration(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(EngineRegistryServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func method(name string, call unaryMethod) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name

	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(EngineRegistryServer), ctx, in)
			}

			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(EngineRegistryServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EngineRegistryServer)(nil),
	Methods: []grpc.MethodDesc{
		method("ListEngines", EngineRegistryServer.ListEngines),
		method("GetEngine", EngineRegistryServer.GetEngine),
		method("EngineAt", EngineRegistryServer.EngineAt),
		method("AddEngine", EngineRegistryServer.AddEngine),
		method("UpdateEngine", EngineRegistryServer.UpdateEngine),
		method("RemoveEngine", EngineRegistryServer.RemoveEngine),
		method("NewPreset", EngineRegistryServer.NewPreset),
		method("SavePreset", EngineRegistryServer.SavePreset),
		method("LoadPreset", EngineRegistryServer.LoadPreset),
		method("LoadConfiguration", EngineRegistryServer.LoadConfiguration),
		method("SaveConfiguration", EngineRegistryServer.SaveConfiguration),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "enginehub/v1/registry.proto",
}

// RegisterEngineRegistryServer registers srv on s.
func RegisterEngineRegistryServer(s grpc.ServiceRegistrar, srv EngineRegistryServer) {
	s.RegisterService(&serviceDesc, srv)
}

// EngineService implements EngineRegistryServer on top of a Registry.
// Preset requests carry a name that is resolved inside presetDir; clients
// cannot address files outside it.
type EngineService struct {
	registry  *registry.Registry
	presetDir string
}

// NewEngineService creates a new EngineService instance.
func NewEngineService(reg *registry.Registry, presetDir string) *EngineService {
	return &EngineService{registry: reg, presetDir: presetDir}
}

// ListEngines returns all engines in presentation order.
func (s *EngineService) ListEngines(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	engines := s.registry.List()

	list := make([]any, 0, len(engines))
	for _, e := range engines {
		list = append(list, engineFields(e))
	}

	return newStruct(map[string]any{"engines": list})
}

// GetEngine returns the engine with the requested id.
func (s *EngineService) GetEngine(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := requireString(in, "id")
	if err != nil {
		return nil, err
	}

	e, ok := s.registry.Get(id)
	if !ok {
		return nil, toStatus(registry.ErrNotFound)
	}

	return newStruct(engineFields(e))
}

// EngineAt returns the engine at the requested sorted index.
func (s *EngineService) EngineAt(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	index, ok := mapsafe.Lookup[int](in.AsMap(), "index")
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "index must be an integer")
	}

	e, err := s.registry.At(index)
	if err != nil {
		return nil, toStatus(err)
	}

	return newStruct(engineFields(e))
}

// AddEngine creates an engine. When the request carries an id the engine is
// inserted as-is and the id must not be taken.
func (s *EngineService) AddEngine(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	description, channels, err := requireFields(in)
	if err != nil {
		return nil, err
	}

	if id, ok := mapsafe.Lookup[string](in.AsMap(), "id"); ok && id != "" {
		e := engine.Restore(id, description, channels)
		if err := s.registry.Insert(e); err != nil {
			return nil, toStatus(err)
		}
		return newStruct(engineFields(e))
	}

	return newStruct(engineFields(s.registry.Add(description, channels)))
}

// UpdateEngine overwrites description and channels of an engine.
func (s *EngineService) UpdateEngine(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := requireString(in, "id")
	if err != nil {
		return nil, err
	}
	description, channels, err := requireFields(in)
	if err != nil {
		return nil, err
	}

	if err := s.registry.Update(id, description, channels); err != nil {
		return nil, toStatus(err)
	}

	return newStruct(engineFields(engine.Restore(id, description, channels)))
}

// RemoveEngine deletes an engine.
func (s *EngineService) RemoveEngine(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := requireString(in, "id")
	if err != nil {
		return nil, err
	}

	if err := s.registry.Remove(id); err != nil {
		return nil, toStatus(err)
	}

	return &structpb.Struct{}, nil
}

// NewPreset empties the registry.
func (s *EngineService) NewPreset(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	s.registry.NewPreset()
	return &structpb.Struct{}, nil
}

// SavePreset writes the registry to the named preset.
func (s *EngineService) SavePreset(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	path, err := s.presetPath(in)
	if err != nil {
		return nil, err
	}

	if err := xfs.EnsureParentDir(path); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	if err := s.registry.SavePreset(path); err != nil {
		return nil, toStatus(err)
	}

	return newStruct(map[string]any{"path": path})
}

// LoadPreset replaces the registry with the named preset.
func (s *EngineService) LoadPreset(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	path, err := s.presetPath(in)
	if err != nil {
		return nil, err
	}

	if err := s.registry.LoadPreset(path); err != nil {
		return nil, toStatus(err)
	}

	return newStruct(map[string]any{"path": path, "count": s.registry.Len()})
}

func (s *EngineService) presetPath(in *structpb.Struct) (string, error) {
	name, err := requireString(in, "name")
	if err != nil {
		return "", err
	}

	path, err := preset.Resolve(s.presetDir, name)
	if err != nil {
		return "", status.Error(codes.InvalidArgument, err.Error())
	}

	return path, nil
}

// LoadConfiguration loads a driver document; without a path the canonical
// document is used.
func (s *EngineService) LoadConfiguration(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	path := mapsafe.Get(in.AsMap(), "path", "")

	var err error
	if path == "" {
		path = s.registry.DriverConfigPath()
		err = s.registry.LoadDriverConfiguration()
	} else {
		err = s.registry.LoadConfiguration(path)
	}
	if err != nil {
		return nil, toStatus(err)
	}

	return newStruct(map[string]any{"path": path, "count": s.registry.Len()})
}

// SaveConfiguration writes the updated driver document; without a path a
// fresh temporary path is used.
func (s *EngineService) SaveConfiguration(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	path := mapsafe.Get(in.AsMap(), "path", "")

	var err error
	if path == "" {
		path, err = s.registry.SaveDriverConfiguration()
	} else {
		err = s.registry.SaveConfiguration(path)
	}
	if err != nil {
		return nil, toStatus(err)
	}

	return newStruct(map[string]any{"path": path})
}

func engineFields(e engine.Engine) map[string]any {
	return map[string]any{
		"id":          e.ID(),
		"description": e.Description,
		"channels":    e.Channels,
	}
}

func newStruct(fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return out, nil
}

func requireString(in *structpb.Struct, key string) (string, error) {
	v, ok := mapsafe.Lookup[string](in.AsMap(), key)
	if !ok || v == "" {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", key)
	}
	return v, nil
}

func requireFields(in *structpb.Struct) (string, int, error) {
	fields := in.AsMap()

	description, ok := mapsafe.Lookup[string](fields, "description")
	if !ok {
		return "", 0, status.Error(codes.InvalidArgument, "description must be a string")
	}
	channels, ok := mapsafe.Lookup[int](fields, "channels")
	if !ok {
		return "", 0, status.Error(codes.InvalidArgument, "channels must be an integer")
	}

	return description, channels, nil
}

// toStatus maps registry errors onto gRPC status codes.
func toStatus(err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, registry.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, registry.ErrAlreadyExists):
		code = codes.AlreadyExists
	case errors.Is(err, registry.ErrOutOfRange):
		code = codes.OutOfRange
	case errors.Is(err, registry.ErrNoIdentifier):
		code = codes.InvalidArgument
	case errors.Is(err, registry.ErrMalformedSource):
		code = codes.FailedPrecondition
	default:
		code = codes.Internal
	}

	return status.Error(code, err.Error())
}
