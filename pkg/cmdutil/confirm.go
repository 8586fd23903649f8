package cmdutil

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// ConfirmDestructive asks the operator to type "yes" before a destructive
// operation (formatting a device that may already hold data) proceeds. If
// stdin is not a terminal it refuses outright, the way a script invoking
// format unattended must pass --yes instead of relying on a prompt that
// can never be answered.
func ConfirmDestructive(device, action string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, nil
	}
	fmt.Printf("%s will make the current contents of %q unreachable.\n", action, device)
	fmt.Print("Type \"yes\" to continue: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	return strings.TrimSpace(line) == "yes", nil
}
