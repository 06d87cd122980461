// Command glctxinfo opens a canvas backend, makes its context current and
// prints the context registry state.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"runtime"

	"github.com/gogpu/glcontext"
	"github.com/gogpu/glcontext/backend"
	"github.com/gogpu/glcontext/backend/glfwgl"
	_ "github.com/gogpu/glcontext/backend/headless"
)

func init() {
	// GLFW requires the main OS thread.
	runtime.LockOSThread()
}

func main() {
	var (
		configPath = flag.String("config", "", "TOML or YAML context config file")
		name       = flag.String("backend", "", "canvas backend (default: best available)")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		glcontext.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	if err := run(os.Stdout, *configPath, *name); err != nil {
		log.Fatal(err)
	}
}

func run(w io.Writer, configPath, name string) error {
	defer glfwgl.Terminate()

	var opts []backend.OpenOption
	if configPath != "" {
		cfg, err := glcontext.LoadConfig(configPath)
		if err != nil {
			return err
		}
		ctx, err := glcontext.NewContext(cfg)
		if err != nil {
			return err
		}
		opts = append(opts, backend.WithContext(ctx))
	}

	var (
		s   *backend.Surface
		err error
	)
	if name == "" {
		s, err = backend.OpenDefault(opts...)
	} else {
		s, err = backend.Open(name, opts...)
	}
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Printf("close: %v", err)
		}
	}()

	ctx := s.Context()
	fmt.Fprintf(w, "backends: %v\n", backend.Available())
	fmt.Fprintf(w, "context:  %v (current: %t)\n", ctx, ctx.IsCurrent())
	for _, opt := range glcontext.OptionNames() {
		fmt.Fprintf(w, "  %-14s %v\n", opt, ctx.Config()[opt])
	}
	fmt.Fprintln(w, glcontext.Default().Status())
	return nil
}
