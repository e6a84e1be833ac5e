// SPDX-License-Identifier: MIT

package glm

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/aboualiaa/freesurfer-sub000/matrix"
)

const opDump = "Dump"

// Dump writes the context's inputs, fit and last test results under dir as
// plain-text files (see matrix.WriteText), for offline inspection:
//
//	y.dat X.dat dof.dat ill_cond_flag.dat
//	beta.dat yhat.dat eres.dat rvar.dat ncontrasts.dat
//	<contrast>/C.dat Ccond.dat Mpmf.dat gamma.dat gamma0.dat
//	           F.dat p.dat z.dat pcc.dat ypmf.dat
//
// Writing stops after ill_cond_flag.dat for an ill-conditioned design, and
// after the inputs when no fit exists. Contrast directories carry the last
// element of the contrast name, or contrast%03d (1-based) for unnamed
// contrasts; repeated names get a numeric suffix. Dump never changes the
// context.
func (c *Context) Dump(dir string) error {
	if c.x == nil {
		return glmErrorf(opDump, ErrNoDesign)
	}
	d := dumper{dir: dir, log: c.cfg.logger}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return glmErrorf(opDump, err)
	}

	if c.y != nil {
		d.dense("y.dat", c.y)
	}
	d.dense("X.dat", c.x)
	if !c.designReady {
		return d.done()
	}
	d.scalar("dof.dat", c.dof)
	d.flag("ill_cond_flag.dat", c.illCond)
	if c.illCond || !c.fitted {
		return d.done()
	}

	d.dense("beta.dat", c.beta)
	d.dense("yhat.dat", c.yhat)
	d.dense("eres.dat", c.eres)
	d.scalar("rvar.dat", c.rvar)
	d.count("ncontrasts.dat", len(c.contrasts))

	used := make(map[string]bool, len(c.contrasts))
	for i, con := range c.contrasts {
		name := contrastDirName(con.name, i, used)
		cd := dumper{dir: filepath.Join(dir, name), log: d.log, err: d.err}
		if cd.err == nil {
			cd.err = os.MkdirAll(cd.dir, 0o755)
		}
		cd.dense("C.dat", con.c)
		cd.scalar("Ccond.dat", con.cond)
		if con.p != nil {
			cd.dense("Mpmf.dat", con.p)
		}
		if con.baseline != nil {
			cd.vector("gamma0.dat", con.baseline)
		}
		if c.tested && i < len(c.results) {
			r := c.results[i]
			if r.Gamma != nil {
				cd.vector("gamma.dat", r.Gamma)
			}
			cd.scalar("F.dat", r.F)
			cd.scalar("p.dat", r.P)
			cd.scalar("z.dat", r.Z)
			cd.scalar("pcc.dat", r.PCC)
			if r.PMF != nil {
				cd.vector("ypmf.dat", r.PMF)
			}
		}
		d.err = cd.err
	}

	return d.done()
}

// contrastDirName returns the directory for contrast i: the last element
// of its name, or contrast%03d (1-based) when the name is empty or names no
// file. A name already in used gets a _%03d suffix.
func contrastDirName(name string, i int, used map[string]bool) string {
	base := filepath.Base(name)
	if name == "" || base == "." || base == ".." || base == string(filepath.Separator) {
		base = fmt.Sprintf("contrast%03d", i+1)
	}
	dir := base
	for n := i + 1; used[dir]; n++ {
		dir = fmt.Sprintf("%s_%03d", base, n)
	}
	used[dir] = true

	return dir
}

// dumper writes files under dir until the first error, which it keeps.
type dumper struct {
	dir string
	log *slog.Logger
	err error
}

func (d *dumper) done() error {
	if d.err != nil {
		return glmErrorf(opDump, d.err)
	}

	return nil
}

func (d *dumper) write(name string, fill func(io.Writer) error) {
	if d.err != nil {
		return
	}
	path := filepath.Join(d.dir, name)
	f, err := os.Create(path)
	if err != nil {
		d.err = err
		return
	}
	if err = fill(f); err != nil {
		_ = f.Close()
		d.err = fmt.Errorf("%s: %w", path, err)
		return
	}
	if err = f.Close(); err != nil {
		d.err = err
		return
	}
	d.log.Debug("glm: dump", slog.String("file", path))
}

func (d *dumper) dense(name string, m matrix.Matrix) {
	d.write(name, func(w io.Writer) error { return matrix.WriteText(w, m) })
}

func (d *dumper) vector(name string, v []float64) {
	d.write(name, func(w io.Writer) error {
		col, err := matrix.NewColumn(v)
		if err != nil {
			return err
		}

		return matrix.WriteText(w, col)
	})
}

func (d *dumper) scalar(name string, v float64) {
	d.line(name, strconv.FormatFloat(v, 'g', -1, 64))
}

func (d *dumper) count(name string, v int) { d.line(name, strconv.Itoa(v)) }

func (d *dumper) flag(name string, on bool) {
	if on {
		d.line(name, "1")
	} else {
		d.line(name, "0")
	}
}

func (d *dumper) line(name, s string) {
	d.write(name, func(w io.Writer) error {
		_, err := io.WriteString(w, s+"\n")
		return err
	})
}
