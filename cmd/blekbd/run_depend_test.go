// Code generated by dependgen — DO NOT EDIT.
package main

import "github.com/srgg/testify/depend"

var RunTestSuiteTestRegistry = map[string]func(any){
	"TestLoadConfig_Defaults": func(s any) { s.(*RunTestSuite).TestLoadConfig_Defaults() },
	"TestLoadConfig_FlagsOverrideFile": func(s any) { s.(*RunTestSuite).TestLoadConfig_FlagsOverrideFile() },
	"TestLoadConfig_ValidatesAfterFlags": func(s any) { s.(*RunTestSuite).TestLoadConfig_ValidatesAfterFlags() },
	"TestLoadConfig_Invalid": func(s any) { s.(*RunTestSuite).TestLoadConfig_Invalid() },
	"TestLoadConfig_UnknownFileField": func(s any) { s.(*RunTestSuite).TestLoadConfig_UnknownFileField() },
	"TestConfigureLogger": func(s any) { s.(*RunTestSuite).TestConfigureLogger() },
	"TestPrintReports": func(s any) { s.(*RunTestSuite).TestPrintReports() },
	"TestBuildKeyboard": func(s any) { s.(*RunTestSuite).TestBuildKeyboard() },
	"TestServe_RegistrationFailure": func(s any) { s.(*RunTestSuite).TestServe_RegistrationFailure() },
	"TestServe_SignalShutsDown": func(s any) { s.(*RunTestSuite).TestServe_SignalShutsDown() },
	"TestServe_ShutdownTimeout": func(s any) { s.(*RunTestSuite).TestServe_ShutdownTimeout() },
	"TestServe_SecondSignalQuits": func(s any) { s.(*RunTestSuite).TestServe_SecondSignalQuits() },
}

var RunTestSuiteTestOrder = []string{
	"TestLoadConfig_Defaults",
	"TestLoadConfig_FlagsOverrideFile",
	"TestLoadConfig_ValidatesAfterFlags",
	"TestLoadConfig_Invalid",
	"TestLoadConfig_UnknownFileField",
	"TestConfigureLogger",
	"TestPrintReports",
	"TestBuildKeyboard",
	"TestServe_RegistrationFailure",
	"TestServe_SignalShutsDown",
	"TestServe_ShutdownTimeout",
	"TestServe_SecondSignalQuits",
}

var RunTestSuiteDependencies = depend.Depends(func(s any) *depend.Dep {
	dep := new(depend.Dep)
	return dep
})

// GeneratedDependConfig returns the dependency configuration for RunTestSuite.
// This method allows RunTestSuite to be used with depend.RunSuite(t, suite).
// DO NOT implement this method manually - it is auto-generated.
func (s *RunTestSuite) GeneratedDependConfig() *depend.SuiteConfig {
	return &depend.SuiteConfig{
		Registry: RunTestSuiteTestRegistry,
		Order:    RunTestSuiteTestOrder,
		Deps:     RunTestSuiteDependencies,
	}
}
