package shader

import (
	"fmt"

	"github.com/gogpu/naga"
)

// Validate compiles the shader's WGSL to SPIR-V with naga and reports the first error.
// The SPIR-V output is discarded; the device compiles the WGSL itself.
//
// Parameters:
//   - s: the shader to check
//
// Returns:
//   - error: the wrapped compile error, or nil if the source compiles
func Validate(s Shader) error {
	if _, err := Compile(s.Source()); err != nil {
		return fmt.Errorf("shader %s: %w", s.Key(), err)
	}
	return nil
}

// Compile compiles WGSL source to a SPIR-V module. A panic inside the compiler is returned as an error.
func Compile(source string) (spirv []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			spirv, err = nil, fmt.Errorf("naga: %v", r)
		}
	}()
	return naga.Compile(source)
}
