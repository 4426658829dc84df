// Package mediatypes provides shared type definitions and utilities for
// classifying media buffers by file extension or MIME type.
//
// This package exists as a dependency-free foundation that can be imported by other
// packages without creating import cycles. It contains primitive types, constants,
// and pure utility functions with no external dependencies beyond the standard library.
//
// # Media Kinds
//
// The package defines a FileType enum for routing a buffer to a derivative
// pipeline:
//
//	mediatypes.FileTypeImage // still images (jpg, png, gif, etc.)
//	mediatypes.FileTypeVideo // videos (mp4, mkv, webm, etc.)
//	mediatypes.FileTypeOther // anything else
//
// Callers that only have a MIME tag use KindForMime:
//
//	switch mediatypes.KindForMime(r.Header.Get("Content-Type")) {
//	case mediatypes.FileTypeImage:
//	    // compress
//	case mediatypes.FileTypeVideo:
//	    // sample a frame
//	}
//
// Callers that only have a filename use GetFileType and GetMimeType:
//
//	ext := strings.ToLower(filepath.Ext(filename))
//	mimeType := mediatypes.GetMimeType(ext) // e.g., "video/mp4"
//
// When neither is trustworthy, SniffMimeType inspects the leading bytes.
package mediatypes
