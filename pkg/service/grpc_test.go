package service

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dasmlab/myanlang/pkg/langid"
)

func dialService(t *testing.T, svc *LanguageService, opts ...grpc.ServerOption) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(opts...)
	RegisterLanguageServiceServer(s, NewGRPCServer(svc, quietLogger()))
	go s.Serve(lis)
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func invoke(t *testing.T, conn *grpc.ClientConn, method string, fields map[string]interface{}) (*structpb.Struct, error) {
	t.Helper()
	req, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	resp := new(structpb.Struct)
	err = conn.Invoke(context.Background(), method, req, resp)
	return resp, err
}

func TestGRPCServer(t *testing.T) {
	t.Run("translate detects myanmar source", func(t *testing.T) {
		conn := dialService(t, newTestService(unavailable()))

		resp, err := invoke(t, conn, MethodTranslate, map[string]interface{}{"text": "မင်္ဂလာပါ"})

		require.NoError(t, err)
		assert.Equal(t, "my", resp.Fields["source_lang"].GetStringValue())
		assert.Equal(t, "en", resp.Fields["target_lang"].GetStringValue())
		assert.Equal(t, "[English]: မင်္ဂလာပါ", resp.Fields["result"].GetStringValue())
	})

	t.Run("classify returns confidence", func(t *testing.T) {
		conf := 0.9
		conn := dialService(t, newTestService(&stubClassifier{res: langid.Result{Label: "Myanmar", Confidence: &conf}}))

		resp, err := invoke(t, conn, MethodClassify, map[string]interface{}{"text": "မြန်မာ"})

		require.NoError(t, err)
		assert.Equal(t, "Myanmar", resp.Fields["language"].GetStringValue())
		assert.Equal(t, 0.9, resp.Fields["confidence"].GetNumberValue())
	})

	t.Run("classify null confidence", func(t *testing.T) {
		conn := dialService(t, newTestService(&stubClassifier{res: langid.Result{Label: "English"}}))

		resp, err := invoke(t, conn, MethodClassify, map[string]interface{}{"text": "hi"})

		require.NoError(t, err)
		_, isNull := resp.Fields["confidence"].GetKind().(*structpb.Value_NullValue)
		assert.True(t, isNull)
	})

	t.Run("empty text is invalid argument", func(t *testing.T) {
		conn := dialService(t, newTestService(unavailable()))

		_, err := invoke(t, conn, MethodClassify, map[string]interface{}{"text": ""})

		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("model unavailable is unavailable", func(t *testing.T) {
		conn := dialService(t, newTestService(unavailable()))

		_, err := invoke(t, conn, MethodClassify, map[string]interface{}{"text": "hello"})

		assert.Equal(t, codes.Unavailable, status.Code(err))
	})

	t.Run("detect and normalize", func(t *testing.T) {
		conn := dialService(t, newTestService(unavailable()))

		resp, err := invoke(t, conn, MethodDetect, map[string]interface{}{"text": "mingalarbar"})
		require.NoError(t, err)
		assert.Equal(t, "en", resp.Fields["language"].GetStringValue())
		assert.Equal(t, langid.SourceScript, resp.Fields["source"].GetStringValue())

		resp, err = invoke(t, conn, MethodNormalize, map[string]interface{}{"text": "zg:abc"})
		require.NoError(t, err)
		assert.Equal(t, "abc", resp.Fields["text"].GetStringValue())
		assert.True(t, resp.Fields["converted"].GetBoolValue())
	})

	t.Run("unary interceptor sees full method names", func(t *testing.T) {
		var seen []string
		record := func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
			seen = append(seen, info.FullMethod)
			return handler(ctx, req)
		}
		conn := dialService(t, newTestService(unavailable()), grpc.UnaryInterceptor(record))

		_, err := invoke(t, conn, MethodDetect, map[string]interface{}{"text": "hello"})
		require.NoError(t, err)
		_, err = invoke(t, conn, MethodClassify, map[string]interface{}{"text": ""})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))

		assert.Equal(t, []string{MethodDetect, MethodClassify}, seen)
	})

	t.Run("descriptor lists every method", func(t *testing.T) {
		names := make([]string, 0, len(LanguageServiceDesc.Methods))
		for _, m := range LanguageServiceDesc.Methods {
			require.NotNil(t, m.Handler)
			names = append(names, m.MethodName)
		}
		assert.Equal(t, []string{"Classify", "Detect", "Normalize", "Translate"}, names)
	})
}
