package deps

import "os"

// Status reports the availability of one external dependency or location
// SteamClip relies on. Optional checks may fail without failing the doctor
// command as a whole.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckDirectory reports whether a configured directory exists and is usable.
func CheckDirectory(name, dir string) Status {
	status := Status{Name: name, Command: dir}
	info, err := os.Stat(dir)
	switch {
	case err != nil:
		status.Detail = "directory not found"
	case !info.IsDir():
		status.Detail = "not a directory"
	default:
		status.Available = true
	}
	return status
}
