package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dasmlab/myanlang/pkg/langid"
)

// LanguageServiceName is the fully qualified gRPC service name.
const LanguageServiceName = "myanlang.v1.LanguageService"

// Full method names, for clients invoking the service without generated stubs.
const (
	MethodClassify  = "/" + LanguageServiceName + "/Classify"
	MethodDetect    = "/" + LanguageServiceName + "/Detect"
	MethodNormalize = "/" + LanguageServiceName + "/Normalize"
	MethodTranslate = "/" + LanguageServiceName + "/Translate"
)

// LanguageServiceServer is the gRPC surface of LanguageService. Requests and
// responses are google.protobuf.Struct messages carrying the same fields as
// the HTTP JSON bodies.
type LanguageServiceServer interface {
	Classify(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Detect(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Normalize(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Translate(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type structMethod func(LanguageServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unaryHandler returns an unnamed func type so it is assignable to
// grpc.MethodDesc.Handler.
func unaryHandler(fullMethod string, call structMethod) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LanguageServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(LanguageServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// LanguageServiceDesc describes the service for grpc.Server.RegisterService.
var LanguageServiceDesc = grpc.ServiceDesc{
	ServiceName: LanguageServiceName,
	HandlerType: (*LanguageServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Classify", Handler: unaryHandler(MethodClassify, LanguageServiceServer.Classify)},
		{MethodName: "Detect", Handler: unaryHandler(MethodDetect, LanguageServiceServer.Detect)},
		{MethodName: "Normalize", Handler: unaryHandler(MethodNormalize, LanguageServiceServer.Normalize)},
		{MethodName: "Translate", Handler: unaryHandler(MethodTranslate, LanguageServiceServer.Translate)},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterLanguageServiceServer registers srv on s.
func RegisterLanguageServiceServer(s grpc.ServiceRegistrar, srv LanguageServiceServer) {
	s.RegisterService(&LanguageServiceDesc, srv)
}

// GRPCServer adapts LanguageService to LanguageServiceServer.
type GRPCServer struct {
	svc    *LanguageService
	logger *logrus.Logger
}

// NewGRPCServer creates a GRPCServer.
func NewGRPCServer(svc *LanguageService, logger *logrus.Logger) *GRPCServer {
	if logger == nil {
		logger = logrus.New()
	}
	return &GRPCServer{svc: svc, logger: logger}
}

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

func confidenceValue(c *float64) interface{} {
	if c == nil {
		return nil
	}
	return *c
}

// Classify implements LanguageServiceServer.
func (g *GRPCServer) Classify(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res, err := g.svc.Classify(ctx, stringField(req, "text"))
	if err != nil {
		return nil, g.toStatus("Classify", err)
	}
	return structpb.NewStruct(map[string]interface{}{
		"language":   res.Label,
		"confidence": confidenceValue(res.Confidence),
	})
}

// Detect implements LanguageServiceServer.
func (g *GRPCServer) Detect(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	out, err := g.svc.Detect(ctx, stringField(req, "text"))
	if err != nil {
		return nil, g.toStatus("Detect", err)
	}
	return structpb.NewStruct(map[string]interface{}{
		"language":   out.Language.String(),
		"confidence": confidenceValue(out.Confidence),
		"source":     out.Source,
	})
}

// Normalize implements LanguageServiceServer.
func (g *GRPCServer) Normalize(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	res, err := g.svc.Normalize(stringField(req, "text"))
	if err != nil {
		return nil, g.toStatus("Normalize", err)
	}
	return structpb.NewStruct(map[string]interface{}{
		"text":               res.Text,
		"zawgyi_probability": res.ZawgyiProbability,
		"converted":          res.Converted,
	})
}

// Translate implements LanguageServiceServer.
func (g *GRPCServer) Translate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	out, err := g.svc.Translate(ctx, TranslateInput{
		Text:       stringField(req, "text"),
		SourceLang: stringField(req, "source_lang"),
		TargetLang: stringField(req, "target_lang"),
	})
	if err != nil {
		return nil, g.toStatus("Translate", err)
	}
	return structpb.NewStruct(map[string]interface{}{
		"result":      out.Result,
		"source_lang": out.SourceLang.String(),
		"target_lang": out.TargetLang.String(),
	})
}

func (g *GRPCServer) toStatus(method string, err error) error {
	code := codes.Internal
	switch {
	case errors.Is(err, ErrInvalidInput):
		code = codes.InvalidArgument
	case errors.Is(err, langid.ErrModelUnavailable):
		code = codes.Unavailable
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	}

	g.logger.WithError(err).WithFields(logrus.Fields{
		"method": method,
		"code":   code.String(),
	}).Debug("[gRPC] request failed")

	return status.Error(code, err.Error())
}
