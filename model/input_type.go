package model

type InputType string

const (
	InputText        InputType = "text"
	InputNumber      InputType = "number"
	InputChoice      InputType = "choice"
	InputMultichoice InputType = "multichoice"
	InputRange       InputType = "range"
	InputRating      InputType = "rating"
	InputDatetime    InputType = "datetime"
	InputPoint       InputType = "point"
	InputLine        InputType = "line"
	InputPolygon     InputType = "polygon"
	InputImage       InputType = "image"
	InputTextLine    InputType = "text_line"
	InputHTML        InputType = "html"
)

var inputTypes = map[InputType]bool{
	InputText:        true,
	InputNumber:      true,
	InputChoice:      true,
	InputMultichoice: true,
	InputRange:       true,
	InputRating:      true,
	InputDatetime:    true,
	InputPoint:       true,
	InputLine:        true,
	InputPolygon:     true,
	InputImage:       true,
	InputTextLine:    true,
	InputHTML:        true,
}

func (t InputType) Valid() bool {
	return inputTypes[t]
}

// RequiresChoices reports whether a question of this type cannot exist
// without an inline choice list.
func (t InputType) RequiresChoices() bool {
	switch t {
	case InputChoice, InputMultichoice, InputRange, InputRating:
		return true
	}
	return false
}
