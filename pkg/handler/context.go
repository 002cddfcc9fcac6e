package handler

// DI for all handlers and models alike.

import (
	"go.uber.org/zap"

	ggdb "github.com/yumyai/cytoterm/pkg/db"
	"github.com/yumyai/cytoterm/pkg/cytoband"
)

// Default cap on uploaded cytoband tables.
const DefaultMaxBody = 64 << 20

type DBContext struct {
	Store    *ggdb.TermDB // nil disables persistence and lookups
	Defaults cytoband.Options
	Logger   *zap.Logger
	MaxBody  int64
}

func (dbctx *DBContext) logger() *zap.Logger {
	if dbctx.Logger == nil {
		return zap.NewNop()
	}
	return dbctx.Logger
}

func (dbctx *DBContext) maxBody() int64 {
	if dbctx.MaxBody <= 0 {
		return DefaultMaxBody
	}
	return dbctx.MaxBody
}
