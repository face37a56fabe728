// Package archive turns stored bytes into document text.
//
// Input is first offered to the zip, gzip and zstd readers; a gzip or
// zstd stream may itself hold a tarball. Multi-file archives render their
// index page with sibling resources inlined as data URIs. When no archive
// format accepts the input it is decoded as text, converting from the
// declared or detected charset when it is not UTF-8.
package archive
