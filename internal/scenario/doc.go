// Package scenario seeds named initial populations and runs configured
// experiments.
//
//	exp := scenario.New(config.GetPreset("galaxy", "small"))
//	if err := exp.Setup(); err != nil { ... }
//	res, err := exp.Run(ctx)
package scenario
