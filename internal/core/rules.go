package core

import "venturecore/pkg/domain"

// NewRulesEngine constructs an empty engine instance.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(NewUniqueEmailRule())
	engine.Register(NewStartupOwnerRule())
	engine.Register(NewPartnerProfileRule())
	engine.Register(NewTaskOwnerRule())
	return engine
}
