// Package backend provides pluggable canvas backends for glcontext.
//
// A canvas backend owns a platform surface and its native rendering
// context. Backends register a Factory under a name and priority, usually
// from an init function, and are selected at runtime:
//
//	import _ "github.com/gogpu/glcontext/backend/headless"
//
// # Opening a Canvas
//
// Open creates a canvas from the config of a spare context, takes that
// context with the canvas and makes it current:
//
//	s, err := backend.Open("headless")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer s.Close()
//
//	fmt.Println(s.Context()) // <glcontext.Context with headless backend>
//
// OpenDefault picks the highest-priority available backend, falling back
// to lower priorities when creation fails.
//
// # Available Backends
//
//   - "glfw": hidden GLFW window with an OpenGL context (backend/glfwgl)
//   - "headless": no native context; counts activations (backend/headless)
package backend
