// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/juju/cmd/v4"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"
	"github.com/juju/utils/v4"
	"github.com/juju/utils/v4/ssh"

	"github.com/canonical/azlab/internal/provider/azure"
)

var usageLaunchSummary = `
Launches an Azure lab virtual machine.`[1:]

var usageLaunchDetails = `
Launch provisions a virtual machine in the configured subscription,
along with the virtual network, security group, public IP address and
network interface it depends on.

The resource group is taken from AZURE_RESOURCE_GROUP when set;
otherwise the first resource group in the subscription is used, and one
is created when the subscription has none.

Launch attributes may be given as key=value arguments to --config, or
collected in a YAML file named by --config. Attributes given as
key=value override values from files.

Once the machine has a public address, the SSH connection details are
printed and written to the info file.

Examples:
    azlab launch
    azlab launch --config vm-size=Standard_D2s_v5 --config inbound-ports=22,8080
    azlab launch --config lab.yaml --ssh-public-key ~/.ssh/lab.pub

See also:
    release
    status
    regions`

const defaultInfoFile = "/tmp/azure-instance-info.txt"

func newLaunchCommand() cmd.Command {
	return &launchCommand{
		environCommandBase: environCommandBase{newEnviron: newAzureEnviron},
	}
}

type launchCommand struct {
	environCommandBase

	config       ConfigFlag
	sshPublicKey string
	infoFile     string
	pollInterval time.Duration
	pollTimeout  time.Duration
}

func (c *launchCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "launch",
		Purpose: usageLaunchSummary,
		Doc:     usageLaunchDetails,
	}
}

func (c *launchCommand) SetFlags(f *gnuflag.FlagSet) {
	c.environCommandBase.SetFlags(f)
	f.Var(&c.config, "config", "Launch attributes as key=value, or path to a YAML file")
	f.StringVar(&c.sshPublicKey, "ssh-public-key", "~/.ssh/id_rsa.pub", "Path of the SSH public key installed for the admin user")
	f.StringVar(&c.infoFile, "info-file", defaultInfoFile, "Path the instance details are written to")
	f.DurationVar(&c.pollInterval, "poll-interval", 10*time.Second, "Interval between public address checks")
	f.DurationVar(&c.pollTimeout, "poll-timeout", 5*time.Minute, "Time to wait for the public address before giving up")
}

func (c *launchCommand) Run(ctxt *cmd.Context) error {
	attrs, err := c.config.ReadAttrs(ctxt)
	if err != nil {
		return errors.Annotate(err, "reading launch config")
	}
	cfg, err := azure.ValidateLaunchConfig(attrs)
	if err != nil {
		return errors.Trace(err)
	}
	publicKey, err := readSSHPublicKey(c.sshPublicKey)
	if err != nil {
		return errors.Trace(err)
	}

	env, err := c.newEnviron(ctxt)
	if err != nil {
		return errors.Trace(err)
	}
	ctxt.Infof("Launching a machine in %q.", env.Location())
	result, err := env.Launch(ctxt, azure.LaunchParams{
		Config:       cfg,
		SSHPublicKey: publicKey,
		PollInterval: c.pollInterval,
		PollTimeout:  c.pollTimeout,
		StatusCallback: func(message string) {
			ctxt.Infof("%s", message)
		},
	})
	if err != nil {
		return errors.Trace(err)
	}

	printLaunchResult(ctxt.Stdout, result)
	if c.infoFile != "" {
		if err := os.WriteFile(c.infoFile, []byte(formatInstanceInfo(result)), 0644); err != nil {
			return errors.Annotate(err, "writing instance info file")
		}
		ctxt.Infof("Instance info saved to %s.", c.infoFile)
	}
	return nil
}

// readSSHPublicKey reads the first authorised key from the file at
// path, expanding ~ to the user's home directory.
func readSSHPublicKey(path string) (string, error) {
	path, err := utils.NormalizePath(path)
	if err != nil {
		return "", errors.Trace(err)
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", errors.NotFoundf("SSH public key %q", path)
	} else if err != nil {
		return "", errors.Trace(err)
	}
	keys := ssh.SplitAuthorisedKeys(string(data))
	if len(keys) == 0 {
		return "", errors.Errorf("no public keys in %q", path)
	}
	key := keys[0]
	if _, err := ssh.ParseAuthorisedKey(key); err != nil {
		return "", errors.Annotatef(err, "invalid public key in %q", path)
	}
	if fingerprint, _, err := ssh.KeyFingerprint(key); err == nil {
		logger.Debugf("using SSH public key with fingerprint %s", fingerprint)
	}
	return key, nil
}

const launchBannerSeparator = "================================================================"

func sshCommand(result *azure.LaunchResult) string {
	return fmt.Sprintf("ssh %s@%s", result.AdminUsername, result.PublicAddress)
}

// printLaunchResult writes the post-launch banner with the connection
// details for the new machine.
func printLaunchResult(w io.Writer, result *azure.LaunchResult) {
	fmt.Fprintln(w, launchBannerSeparator)
	fmt.Fprintln(w, "Azure ARM-based VM details:")
	fmt.Fprintf(w, "  Resource Group: %s\n", result.ResourceGroup)
	fmt.Fprintf(w, "  VM Name:        %s\n", result.VirtualMachine)
	fmt.Fprintf(w, "  Location:       %s\n", result.Location)
	fmt.Fprintf(w, "  Public IP:      %s\n", result.PublicAddress)
	fmt.Fprintln(w, launchBannerSeparator)
	fmt.Fprintln(w, "To SSH into your VM, run:")
	fmt.Fprintf(w, "  %s\n", sshCommand(result))
	fmt.Fprintln(w, launchBannerSeparator)
}

// formatInstanceInfo renders the content of the info file.
func formatInstanceInfo(result *azure.LaunchResult) string {
	return fmt.Sprintf(`
Azure ARM-based VM details:

Resource Group: %s
VM Name:        %s
Location:       %s
Public IP:      %s

SSH command:
  %s

To delete all resources, run:
  az group delete --name %s --yes --no-wait
`,
		result.ResourceGroup,
		result.VirtualMachine,
		result.Location,
		result.PublicAddress,
		sshCommand(result),
		result.ResourceGroup,
	)
}
