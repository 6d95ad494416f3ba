// Package security provides the approval system for SQL operations.
// A migration script is only sent to the server once an Approver accepts it.
package security

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotApproved is returned by executors when the approver declined
var ErrNotApproved = errors.New("operation cancelled by user")

// ApprovalLevel defines the risk level of an operation
type ApprovalLevel int

const (
	// ReadOnly operations don't require confirmation
	ReadOnly ApprovalLevel = iota
	// Modification operations require simple y/n confirmation
	Modification
	// Destructive operations require confirmation + typing a word
	Destructive
)

// String returns the string representation of the approval level
func (a ApprovalLevel) String() string {
	switch a {
	case ReadOnly:
		return "ReadOnly"
	case Modification:
		return "Modification"
	case Destructive:
		return "Destructive"
	default:
		return "Unknown"
	}
}

// ApprovalRequest represents a request for user approval
type ApprovalRequest struct {
	Operation     string        // Description of the operation
	SQL           string        // SQL script to execute
	Level         ApprovalLevel // Risk level
	ImpactSummary string        // Summary of the impact
}

// Approver defines the interface for approval handling
type Approver interface {
	RequestApproval(req ApprovalRequest) (bool, error)
}

// InteractiveApprover implements approval via terminal interaction
type InteractiveApprover struct {
	reader *bufio.Reader
	out    io.Writer
	// ShowSQL prints the full script before asking
	ShowSQL bool
}

// NewInteractiveApprover creates an approver reading from stdin
func NewInteractiveApprover() *InteractiveApprover {
	return NewPromptApprover(os.Stdin, os.Stderr)
}

// NewPromptApprover creates an interactive approver on arbitrary streams
func NewPromptApprover(in io.Reader, out io.Writer) *InteractiveApprover {
	return &InteractiveApprover{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// RequestApproval prompts the user for confirmation based on the operation level
func (a *InteractiveApprover) RequestApproval(req ApprovalRequest) (bool, error) {
	switch req.Level {
	case ReadOnly:
		return true, nil

	case Modification:
		return a.requestSimpleConfirmation(req)

	case Destructive:
		return a.requestStrictConfirmation(req)

	default:
		return false, fmt.Errorf("unknown approval level: %d", req.Level)
	}
}

// requestSimpleConfirmation asks for y/n confirmation
func (a *InteractiveApprover) requestSimpleConfirmation(req ApprovalRequest) (bool, error) {
	displayOperationDetails(a.out, req, a.ShowSQL)

	fmt.Fprint(a.out, "\n\033[33m⚠ This operation will modify the database.\033[0m\n")
	fmt.Fprint(a.out, "Do you want to proceed? [y/N]: ")

	response, err := a.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && response != "") {
		return false, errors.Wrap(err, "failed to read response")
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// requestStrictConfirmation asks for confirmation + typing a specific word
func (a *InteractiveApprover) requestStrictConfirmation(req ApprovalRequest) (bool, error) {
	displayOperationDetails(a.out, req, a.ShowSQL)

	fmt.Fprint(a.out, "\n\033[31m⛔ WARNING: This is a DESTRUCTIVE operation!\033[0m\n")
	fmt.Fprint(a.out, "\033[31mThis action cannot be undone.\033[0m\n\n")

	confirmWord := "CONFIRM"
	fmt.Fprintf(a.out, "Type '%s' to proceed: ", confirmWord)

	response, err := a.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && response != "") {
		return false, errors.Wrap(err, "failed to read response")
	}

	if strings.TrimSpace(response) != confirmWord {
		fmt.Fprintln(a.out, "\n\033[31mOperation cancelled. Confirmation word did not match.\033[0m")
		return false, nil
	}

	return true, nil
}

// displayOperationDetails shows the operation information to the user
func displayOperationDetails(w io.Writer, req ApprovalRequest, showSQL bool) {
	fmt.Fprintln(w, "\n"+strings.Repeat("─", 60))
	fmt.Fprintf(w, "\033[1mOperation:\033[0m %s\n", req.Operation)
	fmt.Fprintf(w, "\033[1mRisk Level:\033[0m %s\n", req.Level)

	if req.ImpactSummary != "" {
		fmt.Fprintf(w, "\033[1mImpact:\033[0m %s\n", req.ImpactSummary)
	}

	if showSQL && req.SQL != "" {
		fmt.Fprintln(w, "\n\033[1mSQL to execute:\033[0m")
		fmt.Fprintln(w, "\033[36m"+req.SQL+"\033[0m")
	}

	fmt.Fprintln(w, strings.Repeat("─", 60))
}

// AutoApprover always gives the same answer (for --yes or tests)
type AutoApprover struct {
	approve bool
}

// NewAutoApprover creates an auto-approver with the specified behavior
func NewAutoApprover(approve bool) *AutoApprover {
	return &AutoApprover{approve: approve}
}

// RequestApproval returns the configured approval decision
func (a *AutoApprover) RequestApproval(req ApprovalRequest) (bool, error) {
	return a.approve, nil
}

// DryRunApprover displays what would happen but never approves
type DryRunApprover struct {
	out io.Writer
}

// NewDryRunApprover creates a new dry-run approver writing to out
func NewDryRunApprover(out io.Writer) *DryRunApprover {
	return &DryRunApprover{out: out}
}

// RequestApproval displays the operation but always returns false
func (a *DryRunApprover) RequestApproval(req ApprovalRequest) (bool, error) {
	fmt.Fprintln(a.out, "\n\033[34m[DRY-RUN MODE]\033[0m The following operation would be executed:")
	displayOperationDetails(a.out, req, true)
	fmt.Fprintln(a.out, "\033[34mNo changes were made (dry-run mode).\033[0m")

	return false, nil
}
