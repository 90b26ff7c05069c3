package dataprocessing

// StructuralError reports a workbook whose geometry cannot anchor any
// record at all, such as a missing required sheet. Extraction stops and
// the message becomes the result's only validation error.
type StructuralError struct {
	Message string
}

func (e *StructuralError) Error() string { return e.Message }

func structural(msg string) *StructuralError { return &StructuralError{Message: msg} }

// UnknownTemplateMessage is the validation error for unclassifiable workbooks.
const UnknownTemplateMessage = "Template type not recognized. Please use a supported Excel template."
