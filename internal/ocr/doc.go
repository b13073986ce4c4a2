// Package ocr reads the text inside changed regions using Tesseract.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2). It is used
// when a comparison asks for the text of each reported region, which turns a
// box like "(40,40) 20x20" into "the price label now reads 12.99".
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// # Supported Languages
//
// The default language is English ("eng"). Other languages are selected by
// their Tesseract codes ("deu", "fra", "spa", "chi_sim", ...).
//
// # Performance
//
// OCR is CPU-intensive and runs once per region. Callers limit the work by
// limiting the number of regions they pass in.
package ocr
