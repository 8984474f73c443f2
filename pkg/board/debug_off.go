//go:build !wyvern_debug

package board

// debugEnabled gates the internal consistency assertions; see debug_on.go.
const debugEnabled = false
