// Package hiddencontent attaches a secondary block of rich text to a page and
// exposes it only to automated content analyzers.
//
// The stored markup is page metadata under a fixed private key. Visitors get
// it inside a container styled display:none, so it ships with the document
// (and is read by crawlers) without being laid out on screen. SEO analyzers
// get the same rendered markup appended to the text they score.
//
// The Service exposes one operation per responsibility:
//
//   - EditorPanel builds the edit-screen meta box for a page.
//   - SavePage validates and persists a submitted form.
//   - Footer renders the hidden container for a page view.
//   - FrontendContent, AnalyzeContent and PrepareContent feed the three
//     analyzer filters.
//
// Host collaborators (content store, authenticity tokens, permissions,
// sanitizer, content renderer) are interfaces declared in interfaces.go.
// Default implementations live in subpackages. The Hooks type is the typed
// extension-point dispatcher a host fires; Register wires an Extension into it.
package hiddencontent
