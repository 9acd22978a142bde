/*
 * Copyright (c) 2025, Corebuild Authors.
 */
package integration

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestIntegration(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Profiler Integration Suite")
}
