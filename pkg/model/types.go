package model

import internalmodel "github.com/goliatone/go-toolform/internal/model"

// FieldType re-exports the internal FieldType enumeration.
type FieldType = internalmodel.FieldType

const (
	FieldTypeString  = internalmodel.FieldTypeString
	FieldTypeNumber  = internalmodel.FieldTypeNumber
	FieldTypeBoolean = internalmodel.FieldTypeBoolean
	FieldTypeArray   = internalmodel.FieldTypeArray
	FieldTypeObject  = internalmodel.FieldTypeObject
)

// ValueKind re-exports the declared leaf decoding kind.
type ValueKind = internalmodel.ValueKind

const (
	ValueKindString  = internalmodel.ValueKindString
	ValueKindNumber  = internalmodel.ValueKindNumber
	ValueKindBoolean = internalmodel.ValueKindBoolean
	ValueKindJSON    = internalmodel.ValueKindJSON
	ValueKindAuto    = internalmodel.ValueKindAuto
)

const (
	WidgetGroup        = internalmodel.WidgetGroup
	WidgetToggle       = internalmodel.WidgetToggle
	WidgetNumber       = internalmodel.WidgetNumber
	WidgetJSONTextarea = internalmodel.WidgetJSONTextarea
	WidgetText         = internalmodel.WidgetText
)

type Field = internalmodel.Field
type FormModel = internalmodel.FormModel

// PathName encodes a segment path as the bracketed input name used in HTML
// forms, e.g. ["outer", "inner"] -> "outer[inner]".
func PathName(path []string) string {
	return internalmodel.PathName(path)
}

// DefaultWidget resolves a widget from the field type alone.
func DefaultWidget(field Field) string {
	return internalmodel.DefaultWidget(field)
}
