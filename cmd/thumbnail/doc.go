// Command thumbnail runs the derivative pipeline on local files.
//
//	thumbnail image photo.heic photo.jpg --max-width 800 --max-height 600
//	thumbnail video clip.mp4 clip.jpg --time 3.5
//	thumbnail batch ./thumbs ./media/*
//
// The MIME type comes from the file extension unless --mime is given;
// unknown extensions are sniffed from the content. batch runs files in
// parallel with a worker count sized from the CPU count (WORKERS overrides
// it) and writes <name>.jpg into the output directory.
package main
