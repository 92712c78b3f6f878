// Package textutil provides the text helpers shared by generation, validation
// and publishing.
//
// Lengths are measured in runes after NFC normalization so titles authored
// with combining marks count the same as their precomposed forms. Fingerprints
// are lowercase term-frequency vectors compared with cosine similarity; they
// back near-duplicate detection of clip candidates.
package textutil
