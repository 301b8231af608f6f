// Code generated by dependgen — DO NOT EDIT.
package main

import "github.com/srgg/testify/depend"

var ReportTestSuiteTestRegistry = map[string]func(any){
	"TestReport": func(s any) { s.(*ReportTestSuite).TestReport() },
	"TestUnsupportedRune": func(s any) { s.(*ReportTestSuite).TestUnsupportedRune() },
	"TestRequiresText": func(s any) { s.(*ReportTestSuite).TestRequiresText() },
	"TestReportMap": func(s any) { s.(*ReportTestSuite).TestReportMap() },
	"TestDescribeReport": func(s any) { s.(*ReportTestSuite).TestDescribeReport() },
}

var ReportTestSuiteTestOrder = []string{
	"TestReport",
	"TestUnsupportedRune",
	"TestRequiresText",
	"TestReportMap",
	"TestDescribeReport",
}

var ReportTestSuiteDependencies = depend.Depends(func(s any) *depend.Dep {
	dep := new(depend.Dep)
	return dep
})

// GeneratedDependConfig returns the dependency configuration for ReportTestSuite.
// This method allows ReportTestSuite to be used with depend.RunSuite(t, suite).
// DO NOT implement this method manually - it is auto-generated.
func (s *ReportTestSuite) GeneratedDependConfig() *depend.SuiteConfig {
	return &depend.SuiteConfig{
		Registry: ReportTestSuiteTestRegistry,
		Order:    ReportTestSuiteTestOrder,
		Deps:     ReportTestSuiteDependencies,
	}
}
