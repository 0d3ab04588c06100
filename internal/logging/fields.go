package logging

import (
	"go.uber.org/zap"
)

// Standard field keys shared by every component.
const (
	KeyDataset = "dataset"
	KeyColumn  = "column"
	KeyCheck   = "check"
	KeyOp      = "op"
	KeySource  = "source"
	KeyRunID   = "run_id"
)

func Dataset(name string) zap.Field { return zap.String(KeyDataset, name) }
func Column(name string) zap.Field  { return zap.String(KeyColumn, name) }
func Check(name string) zap.Field   { return zap.String(KeyCheck, name) }
func Op(name string) zap.Field      { return zap.String(KeyOp, name) }
func Source(name string) zap.Field  { return zap.String(KeySource, name) }
func RunID(id string) zap.Field     { return zap.String(KeyRunID, id) }
