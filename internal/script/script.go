// Package script holds the shell text that wraps the per-step blocks: the
// environment preamble shared with other PISM example scripts and the header
// recording how a script was generated.
package script

import (
	"strings"
)

// Preamble sets SCRIPTNAME, NN, PISM_MPIDO, PISM_DO and PISM_BIN unless they
// are already set, enables exit-on-error and defines $extra_vars.
const Preamble = `
if [ -n "${SCRIPTNAME:+1}" ] ; then
  echo "[SCRIPTNAME=$SCRIPTNAME (already set)]"
  echo ""
else
  SCRIPTNAME="#(mismip.sh)"
fi

echo
echo "# =================================================================================="
echo "# MISMIP experiments"
echo "# =================================================================================="
echo

set -e  # exit on error

NN=2  # default number of processors
if [ $# -gt 0 ] ; then  # if user says "mismip.sh 8" then NN = 8
  NN="$1"
fi

echo "$SCRIPTNAME              NN = $NN"

# set MPIDO if using different MPI execution command, for example:
#  $ export PISM_MPIDO="aprun -n "
if [ -n "${PISM_MPIDO:+1}" ] ; then  # check if env var is already set
  echo "$SCRIPTNAME      PISM_MPIDO = $PISM_MPIDO  (already set)"
else
  PISM_MPIDO="mpiexec -n "
  echo "$SCRIPTNAME      PISM_MPIDO = $PISM_MPIDO"
fi

# check if env var PISM_DO was set (i.e. PISM_DO=echo for a 'dry' run)
if [ -n "${PISM_DO:+1}" ] ; then  # check if env var DO is already set
  echo "$SCRIPTNAME         PISM_DO = $PISM_DO  (already set)"
else
  PISM_DO=""
fi

# prefix to pism (not to executables)
if [ -n "${PISM_BIN:+1}" ] ; then  # check if env var is already set
  echo "$SCRIPTNAME     PISM_BIN = $PISM_BIN  (already set)"
else
  PISM_BIN=""    # just a guess
  echo "$SCRIPTNAME     PISM_BIN = $PISM_BIN"
fi

extra_vars=thk,topg,velbar_mag,flux_mag,mask,dHdt,usurf,hardav,velbase_mag,nuH,tauc,taud,taub,flux_divergence,cell_grounded_fraction

`

// Header is the shebang and a comment with the command line that produced
// the script.
func Header(args []string) string {
	escaped := make([]string, len(args))
	for i, a := range args {
		escaped[i] = EscapeArg(a)
	}
	var b strings.Builder
	b.WriteString("#!/bin/bash\n")
	b.WriteString("# This script was created by mismipgen. The command was:\n")
	b.WriteString("# " + strings.Join(escaped, " ") + "\n")
	return b.String()
}

// EscapeArg quotes an argument containing spaces so the recorded command can
// be pasted back into a shell: --flag=a b becomes --flag="a b".
func EscapeArg(arg string) string {
	if !strings.Contains(arg, " ") {
		return arg
	}
	if key, value, ok := strings.Cut(arg, "="); ok {
		return key + `="` + value + `"`
	}
	return `"` + arg + `"`
}
