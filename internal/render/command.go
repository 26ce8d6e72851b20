package render

// GPU object handles. Zero is never a valid handle.
type (
	BufferHandle  uint32
	ShaderHandle  uint32
	TextureHandle uint32
)

// Primitive selects the rasterizer topology for a draw.
type Primitive uint8

const (
	Triangles Primitive = iota
	TriangleStrip
	Lines
)

// CullMode selects which winding the rasterizer discards.
type CullMode uint8

const (
	CullNone CullMode = iota
	CullBack
	CullFront
)

// Command is one element of a frame's typed command stream. Layers produce
// commands, the pipeline submits them to a Backend in order.
type Command interface {
	isCommand()
}

// Clear clears the color and depth buffers.
type Clear struct {
	R, G, B, A float32
}

// UseShader binds a shader program for subsequent draws.
type UseShader struct {
	Shader ShaderHandle
}

// DrawArray draws non-indexed geometry from a vertex buffer.
type DrawArray struct {
	Shader  ShaderHandle
	Buffer  BufferHandle
	Texture TextureHandle
	Mode    Primitive
	First   int
	Count   int
}

// DrawElements draws indexed geometry.
type DrawElements struct {
	Shader   ShaderHandle
	Vertices BufferHandle
	Indices  BufferHandle
	Texture  TextureHandle
	Mode     Primitive
	Count    int
}

// SetDepthState toggles depth testing and depth writes. Transparent passes
// keep the test but disable writes.
type SetDepthState struct {
	Test  bool
	Write bool
}

// SetCullMode sets the face culling mode.
type SetCullMode struct {
	Mode CullMode
}

// Scissor restricts rasterization to a screen rectangle when Enabled.
type Scissor struct {
	X, Y, W, H int
	Enabled    bool
}

// DrawText draws a string at a pixel position. Debug overlay only.
type DrawText struct {
	Text    string
	X, Y    int
	Size    float32
	R, G, B float32
}

// DrawTexture blits a texture to a screen rectangle.
type DrawTexture struct {
	Texture    TextureHandle
	X, Y, W, H int
}

func (Clear) isCommand()         {}
func (UseShader) isCommand()     {}
func (DrawArray) isCommand()     {}
func (DrawElements) isCommand()  {}
func (SetDepthState) isCommand() {}
func (SetCullMode) isCommand()   {}
func (Scissor) isCommand()       {}
func (DrawText) isCommand()      {}
func (DrawTexture) isCommand()   {}
