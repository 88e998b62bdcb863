package constants

const (
	BufferSize = 262144 // 256K

	DefaultDirMode  = 0750
	DefaultFileMode = 0640

	// protocol commands
	FRAME  = 0x1 // ANSI repaint bytes from the flusher
	RESIZE = 0x2 // "rows:cols" of the virtual screen
	CLEAR  = 0x3 // full repaint follows, no payload
)
