package web

import "embed"

//go:embed static
var Static embed.FS

// IndexHTML is the upload page served at /
//
//go:embed static/index.html
var IndexHTML []byte

// StylesCSS is served at /styles.css
//
//go:embed static/styles.css
var StylesCSS []byte

// LogoSVG is the source of the service's own favicon
//
//go:embed static/logo.svg
var LogoSVG []byte
