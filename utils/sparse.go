package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
)

/*
DOK wraps a dictionary-of-keys sparse matrix for the accumulation phase of
graph assembly, where entries arrive element by element in arbitrary order.
Convert to CSR once assembly is finished; the CSR form is what graph
construction reads.
*/
type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }

func (m DOK) Set(i, j int, val float64) {
	m.checkWritable()
	m.M.Set(i, j, val)
}

// Accumulate adds val into the (i,j) entry, creating it if absent.
func (m DOK) Accumulate(i, j int, val float64) {
	m.checkWritable()
	m.M.Set(i, j, m.M.At(i, j)+val)
}

func (m DOK) SetReadOnly(name ...string) DOK {
	m.readOnly = true
	if len(name) > 0 {
		m.name = name[0]
	}
	return m
}

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

func (m DOK) ToCSR() CSR {
	return CSR{
		M:    m.M.ToCSR(),
		name: m.name,
	}
}

// CSR is the read-side companion of DOK.
type CSR struct {
	M    *sparse.CSR
	name string
}

func (m CSR) Dims() (r, c int)    { return m.M.Dims() }
func (m CSR) At(i, j int) float64 { return m.M.At(i, j) }

// DoNonZero visits every stored entry.
func (m CSR) DoNonZero(fn func(i, j int, v float64)) { m.M.DoNonZero(fn) }
