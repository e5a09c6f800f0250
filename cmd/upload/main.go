package main

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/qs3c/portfolio_server/internal/pkg/uploader"
)

type options struct {
	server    string
	token     string
	fileType  string
	threshold int64
	timeout   time.Duration
}

func main() {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a file to the portfolio server, choosing proxied or direct upload by size",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVar(&opts.server, "server", envOr("PORTFOLIO_SERVER", "http://localhost:8080"), "server base URL")
	cmd.Flags().StringVar(&opts.token, "token", os.Getenv("PORTFOLIO_TOKEN"), "admin JWT")
	cmd.Flags().StringVar(&opts.fileType, "type", "", "content type (detected from the file when empty)")
	cmd.Flags().Int64Var(&opts.threshold, "threshold", uploader.DefaultRoutingThreshold, "files larger than this many bytes go direct")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", uploader.DefaultProxiedTimeout, "proxied upload timeout")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, path string, opts *options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	f := &uploader.File{
		Name:        filepath.Base(path),
		ContentType: opts.fileType,
		Data:        data,
	}
	if f.ContentType == "" {
		f.ContentType = detectType(f.Name, data)
	}

	d := uploader.New(uploader.Options{
		ServerURL:        opts.server,
		Token:            opts.token,
		RoutingThreshold: opts.threshold,
		ProxiedTimeout:   opts.timeout,
	})

	res, err := d.Upload(cmd.Context(), f)
	if err != nil {
		return errors.New(uploader.UserMessage(err))
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// detectType 优先按扩展名，其次按内容嗅探
func detectType(name string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		if i := strings.Index(t, ";"); i >= 0 {
			t = t[:i]
		}
		return t
	}
	return http.DetectContentType(data)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
