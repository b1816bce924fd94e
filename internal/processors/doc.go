// Package processors selects the document processor for a file.
//
// Processors are tried in registration order by file extension. When no
// extension matches, the file content is sniffed and matched by MIME type.
// Processors themselves live in the plaintext, markdown and html
// subpackages.
package processors
