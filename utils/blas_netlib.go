//go:build netlib

package utils

import (
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/blas/blas64"
	netblas "gonum.org/v1/netlib/blas/netlib"
)

// Built with -tags netlib, gonum's dense factorizations run on the system
// CBLAS, which has to be installed along with its headers.
func init() {
	blas64.Use(netblas.Implementation{})
	log.Debug("using netlib to accelerate BLAS")
}
