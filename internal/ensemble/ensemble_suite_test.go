package ensemble_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestEnsemble(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Ensemble Suite")
}
