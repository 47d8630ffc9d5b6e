package core

import "quantumassembler/pkg/domain"

type (
	CellType   = domain.CellType
	Coordinate = domain.Coordinate
	Direction  = domain.Direction
	CellRecord = domain.CellRecord
	Severity   = domain.Severity
	Violation  = domain.Violation
	Result     = domain.Result
)

const (
	CellVoid        = domain.CellVoid
	CellCharm       = domain.CellCharm
	CellUp          = domain.CellUp
	CellDown        = domain.CellDown
	CellStrange     = domain.CellStrange
	CellTop         = domain.CellTop
	CellGraviton    = domain.CellGraviton
	CellHiggsBoson  = domain.CellHiggsBoson
	CellZBoson      = domain.CellZBoson
	CellWBoson      = domain.CellWBoson
	CellGluon       = domain.CellGluon
	CellSingularity = domain.CellSingularity
)

const (
	DirectionUp    = domain.DirectionUp
	DirectionRight = domain.DirectionRight
	DirectionDown  = domain.DirectionDown
	DirectionLeft  = domain.DirectionLeft
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)
