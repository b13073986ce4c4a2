// Package imaging provides the image I/O and drawing helpers used around the
// change detector.
//
// It decodes raw bytes or files into a Source (the image plus the format it
// arrived in), encodes derived images back into a matching format, caches
// decoded files by path, and draws labelled region boxes onto rendered diffs.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based with (0,0) at the top-left
// corner. Rectangles are half-open: Min is inclusive, Max is exclusive.
//
// # Formats
//
// Decoding recognises PNG, JPEG, GIF, BMP and WebP by content. Encoding
// produces PNG, JPEG, BMP and WebP; GIF and anything unrecognised is written
// as PNG. See OutputFormat.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The other functions are stateless;
// DrawRegions mutates only the image it is given.
package imaging
