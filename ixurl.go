// Package ixurl builds URLs for a remote image-processing service.
//
// A Builder turns an image path and a set of rendering parameters into a
// URL, optionally signed with the account's secret so the service can
// reject tampered requests. It also assembles srcset attribute values,
// either as a ladder of widths for fluid images or as 1x..5x device pixel
// ratio variants for images with a fixed size.
//
// Nothing here performs network I/O; every call is a pure string
// computation over the builder's configuration.
package ixurl

// Version is reported to the image service through the library parameter.
const Version = "0.1.0"

// Parameter names the builder reads or writes.
const (
	LibraryParam   = "ixlib"
	SignatureParam = "s"
	WidthParam     = "w"
	HeightParam    = "h"
	AspectParam    = "ar"
	QualityParam   = "q"
	DPRParam       = "dpr"
)

// LibraryValue identifies this client in generated URLs.
const LibraryValue = "go-" + Version
