package extractor

import "fmt"

func pdfEmpty(name string) string {
	return fmt.Sprintf("[Note: %s appears to be a PDF with no extractable text. It might be an image-based PDF. Please use a text-based PDF or convert the content to plain text.]", name)
}

func pdfFailed(name string) string {
	return fmt.Sprintf("[Note: Could not extract text from %s. The PDF might be encrypted or corrupted. Please try converting it to plain text.]", name)
}

func docxEmpty(name string) string {
	return fmt.Sprintf("[Note: %s appears to be empty or could not be read. Please check the file and try again.]", name)
}

func docxFailed(name string) string {
	return fmt.Sprintf("[Note: Could not extract text from %s. The file might be corrupted. Please try saving it as a PDF or plain text.]", name)
}

func legacyDoc(name string) string {
	return fmt.Sprintf("[Note: %s is an old Word format (.doc). Please:\n1. Open it in Word\n2. Save as .docx or PDF\n3. Re-upload the new file]", name)
}

func unsupported(name, mediaType string) string {
	return fmt.Sprintf("[Note: Could not extract text from %s. The file type %s is not supported.]", name, mediaType)
}
