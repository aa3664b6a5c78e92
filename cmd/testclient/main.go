package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dasmlab/myanlang/pkg/service"
)

var methods = map[string]string{
	"classify":  service.MethodClassify,
	"detect":    service.MethodDetect,
	"normalize": service.MethodNormalize,
	"translate": service.MethodTranslate,
}

type options struct {
	addr       string
	method     string
	text       string
	file       string
	sourceLang string
	targetLang string
	timeout    time.Duration
}

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "testclient",
		Short:         "Call the myanlang gRPC service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "localhost:50051", "gRPC server address")
	cmd.Flags().StringVarP(&opts.method, "method", "m", "translate", "Method: classify, detect, normalize or translate")
	cmd.Flags().StringVar(&opts.text, "text", "", "Text to send (if file not provided)")
	cmd.Flags().StringVar(&opts.file, "file", "", "Path to a text file to send")
	cmd.Flags().StringVar(&opts.sourceLang, "source", "", "Source language code for translate (my or en, detected when empty)")
	cmd.Flags().StringVar(&opts.targetLang, "target", "", "Target language code for translate (my or en)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	return cmd
}

func run(cmd *cobra.Command, opts options) error {
	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())

	fullMethod, ok := methods[strings.ToLower(opts.method)]
	if !ok {
		return fmt.Errorf("unknown method %q", opts.method)
	}

	input := opts.text
	if opts.file != "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return fmt.Errorf("read %s: %w", opts.file, err)
		}
		input = string(data)
	}
	if input == "" {
		return fmt.Errorf("either --file or --text must be provided")
	}

	fields := map[string]interface{}{"text": input}
	if opts.sourceLang != "" {
		fields["source_lang"] = opts.sourceLang
	}
	if opts.targetLang != "" {
		fields["target_lang"] = opts.targetLang
	}
	req, err := structpb.NewStruct(fields)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"server":      opts.addr,
		"method":      fullMethod,
		"text_length": len(input),
	}).Info("Connecting to myanlang server...")

	conn, err := grpc.NewClient(opts.addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("connect to %s: %w", opts.addr, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	start := time.Now()
	resp := &structpb.Struct{}
	if err := conn.Invoke(ctx, fullMethod, req, resp); err != nil {
		return fmt.Errorf("%s failed: %w", opts.method, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderResponse(resp))

	logger.WithFields(logrus.Fields{
		"duration_seconds": time.Since(start).Seconds(),
	}).Info("Request completed successfully")
	return nil
}

func renderResponse(resp *structpb.Struct) string {
	values := resp.AsMap()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Field", "Value"})
	for _, k := range keys {
		v := values[k]
		if v == nil {
			v = "-"
		}
		tw.AppendRow(table.Row{k, v})
	}
	return tw.Render()
}
