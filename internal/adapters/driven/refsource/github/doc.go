// Package github fetches medical reference documents from a GitHub
// repository. Markdown files under a path prefix are read through the Git
// tree and blob APIs so a whole corpus costs one tree request plus one
// request per file.
package github
