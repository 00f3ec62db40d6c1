// Package ocr reads printed text from camera frames.
//
// Recognition itself is done by Tesseract through gosseract/v2 and is
// treated as a black box behind the Recognizer interface. This package adds
// the light post-processing the rest of sightline needs:
//
//   - Preprocess: grayscale and contrast boost before recognition
//   - ReadingOrder: left-to-right ordering by box x
//   - IsPlausibleWord: drops OCR noise by vowel ratio, impossible letter
//     repeats, and stray digit/letter mixes, while keeping currency amounts
//   - Sentence: the plausible words of a result, in reading order
//
// # Prerequisites
//
// Tesseract and its language data must be installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng libtesseract-dev
//   - macOS: brew install tesseract
//
// Set Tesseract.TessdataPrefix when the language data lives outside the
// default search path.
//
// # Coordinates
//
// Observation boxes are normalized to [0,1] against the image passed to
// Recognize, like every other box in sightline.
package ocr
