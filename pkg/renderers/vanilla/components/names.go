package components

import "github.com/goliatone/go-toolform/pkg/model"

// Component names match the widget identifiers so a resolved widget maps
// straight onto its renderer.
const (
	NameGroup        = model.WidgetGroup
	NameToggle       = model.WidgetToggle
	NameNumber       = model.WidgetNumber
	NameJSONTextarea = model.WidgetJSONTextarea
	NameText         = model.WidgetText
)
