// Package document converts content between the authoring markup and the
// native formats of each deployment dialect.
//
// All conversions pass through one intermediate Document tree; there is no
// direct markup-to-markup path. The supported node set is deliberately
// small: headings, paragraphs, bullet and ordered lists, fenced code blocks,
// and the inline spans text, bold, italic, inline code, and link.
//
// Forward conversion (markup in) is lossless over that subset. Reverse
// conversion (native format in) is best-effort: native documents can carry
// constructs with no Document equivalent (tables, macros, media), and those
// are dropped rather than erred on.
package document
