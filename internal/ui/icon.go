package ui

// iconBytes is a 16x16 single-color PNG used as the tray icon placeholder
// until the real artwork lands in the build.
var iconBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x10,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0xf3, 0xff, 0x61, 0x00, 0x00, 0x00,
	0x19, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x64, 0x60, 0xf8, 0xff,
	0x9f, 0x81, 0x81, 0x81, 0x81, 0x89, 0x81, 0x44, 0x30, 0xaa, 0x61, 0x54,
	0xc3, 0x70, 0xd1, 0x00, 0x00, 0x52, 0x47, 0x01, 0x11, 0x8c, 0x9a, 0x6b,
	0x72, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae, 0x42, 0x60,
	0x82,
}
