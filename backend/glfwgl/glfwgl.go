// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package glfwgl provides a canvas backend backed by a hidden GLFW window
// with an OpenGL context.
//
// GLFW must be driven from the main OS thread. Programs using this backend
// should call runtime.LockOSThread from an init function of package main
// and open canvases from main.
//
// Importing the package registers it under the name "glfw".
package glfwgl

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/gogpu/glcontext"
	"github.com/gogpu/glcontext/backend"
)

// Name is the backend identifier.
const Name = "glfw"

func init() {
	backend.Register(Name, 100, func(cfg glcontext.Config) (backend.Canvas, error) {
		return New(cfg)
	}, hasDisplay)
}

// hasDisplay reports whether a window system is reachable. GLFW itself is
// not initialized here.
func hasDisplay() bool {
	if runtime.GOOS != "linux" && runtime.GOOS != "freebsd" {
		return true
	}
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

var glfwState struct {
	mu          sync.Mutex
	initialized bool
}

func ensureInit() error {
	glfwState.mu.Lock()
	defer glfwState.mu.Unlock()

	if glfwState.initialized {
		return nil
	}
	if err := glfw.Init(); err != nil {
		return err
	}
	glfwState.initialized = true
	return nil
}

// Terminate destroys remaining windows and shuts GLFW down. It does nothing
// if no canvas was ever created, and a later New initializes GLFW again.
// Call it from the main OS thread once all canvases are closed:
//
//	defer glfwgl.Terminate()
func Terminate() {
	glfwState.mu.Lock()
	defer glfwState.mu.Unlock()

	if !glfwState.initialized {
		return
	}
	glfw.Terminate()
	glfwState.initialized = false
	glcontext.Logger().Debug("glfwgl: terminated")
}

// WindowHint is a GLFW window creation hint and its value.
type WindowHint struct {
	Hint  glfw.Hint
	Value int
}

// WindowHints maps cfg to the GLFW hints that request a matching OpenGL
// framebuffer. The window is always hidden.
func WindowHints(cfg glcontext.Config) []WindowHint {
	return []WindowHint{
		{glfw.Visible, glfw.False},
		{glfw.ClientAPI, glfw.OpenGLAPI},
		{glfw.RedBits, cfg.Int(glcontext.OptionRedSize)},
		{glfw.GreenBits, cfg.Int(glcontext.OptionGreenSize)},
		{glfw.BlueBits, cfg.Int(glcontext.OptionBlueSize)},
		{glfw.AlphaBits, cfg.Int(glcontext.OptionAlphaSize)},
		{glfw.DepthBits, cfg.Int(glcontext.OptionDepthSize)},
		{glfw.StencilBits, cfg.Int(glcontext.OptionStencilSize)},
		{glfw.Samples, cfg.Int(glcontext.OptionSamples)},
		{glfw.DoubleBuffer, glfwBool(cfg.Bool(glcontext.OptionDoubleBuffer))},
		{glfw.Stereo, glfwBool(cfg.Bool(glcontext.OptionStereo))},
	}
}

func glfwBool(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

// Canvas is a hidden GLFW window owning an OpenGL context.
type Canvas struct {
	window *glfw.Window
}

// New initializes GLFW if needed and creates a hidden window whose context
// honours cfg. Must be called from the main OS thread.
func New(cfg glcontext.Config) (*Canvas, error) {
	if cfg == nil {
		cfg = glcontext.DefaultConfig()
	}
	if err := ensureInit(); err != nil {
		return nil, fmt.Errorf("glfwgl: init: %w", err)
	}

	glfw.DefaultWindowHints()
	for _, h := range WindowHints(cfg) {
		glfw.WindowHint(h.Hint, h.Value)
	}
	w, err := glfw.CreateWindow(16, 16, "glcontext", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("glfwgl: create window: %w", err)
	}
	glcontext.Logger().Debug("glfwgl: window created", "samples", cfg.Int(glcontext.OptionSamples))
	return &Canvas{window: w}, nil
}

// Name returns "glfw".
func (c *Canvas) Name() string { return Name }

// MakeCurrent makes the window's context current on the calling thread.
func (c *Canvas) MakeCurrent() error {
	if c.window == nil {
		return backend.ErrClosed
	}
	c.window.MakeContextCurrent()
	return nil
}

// DetachCurrent leaves the calling thread without a current context.
func (c *Canvas) DetachCurrent() error {
	glfw.DetachCurrentContext()
	return nil
}

// Window returns the GLFW window, or nil after Close.
func (c *Canvas) Window() *glfw.Window { return c.window }

// Close destroys the window and its context.
func (c *Canvas) Close() error {
	if c.window == nil {
		return nil
	}
	c.window.Destroy()
	c.window = nil
	return nil
}

var (
	_ backend.Canvas     = (*Canvas)(nil)
	_ glcontext.Detacher = (*Canvas)(nil)
)
