// Code generated by dependgen — DO NOT EDIT.
package main

import "github.com/srgg/testify/depend"

var TreeTestSuiteTestRegistry = map[string]func(any){
	"TestJSON": func(s any) { s.(*TreeTestSuite).TestJSON() },
	"TestText": func(s any) { s.(*TreeTestSuite).TestText() },
	"TestTextOrderFollowsRegistration": func(s any) { s.(*TreeTestSuite).TestTextOrderFollowsRegistration() },
	"TestControlPoint": func(s any) { s.(*TreeTestSuite).TestControlPoint() },
	"TestYAMLKeepsOrder": func(s any) { s.(*TreeTestSuite).TestYAMLKeepsOrder() },
	"TestAdvertisement": func(s any) { s.(*TreeTestSuite).TestAdvertisement() },
	"TestConfigFile": func(s any) { s.(*TreeTestSuite).TestConfigFile() },
	"TestErrors": func(s any) { s.(*TreeTestSuite).TestErrors() },
}

var TreeTestSuiteTestOrder = []string{
	"TestJSON",
	"TestText",
	"TestTextOrderFollowsRegistration",
	"TestControlPoint",
	"TestYAMLKeepsOrder",
	"TestAdvertisement",
	"TestConfigFile",
	"TestErrors",
}

var TreeTestSuiteDependencies = depend.Depends(func(s any) *depend.Dep {
	dep := new(depend.Dep)
	dep.On("TestControlPoint", "TestJSON")
	dep.On("TestYAMLKeepsOrder", "TestTextOrderFollowsRegistration")
	return dep
})

// GeneratedDependConfig returns the dependency configuration for TreeTestSuite.
// This method allows TreeTestSuite to be used with depend.RunSuite(t, suite).
// DO NOT implement this method manually - it is auto-generated.
func (s *TreeTestSuite) GeneratedDependConfig() *depend.SuiteConfig {
	return &depend.SuiteConfig{
		Registry: TreeTestSuiteTestRegistry,
		Order:    TreeTestSuiteTestOrder,
		Deps:     TreeTestSuiteDependencies,
	}
}
