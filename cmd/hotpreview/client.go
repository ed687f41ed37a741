// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/hotpreview/hotpreview/lib/automation"
	"github.com/hotpreview/hotpreview/lib/cli"
)

const defaultServer = "http://127.0.0.1:54243"

// clientParams are the flags shared by commands that talk to the
// automation API.
type clientParams struct {
	server     string
	project    string
	outputJSON bool
}

func (p *clientParams) register(flagSet *pflag.FlagSet, withProject bool) {
	flagSet.StringVar(&p.server, "server", defaultServer, "automation API base URL")
	flagSet.BoolVar(&p.outputJSON, "json", false, "output as JSON")
	if withProject {
		flagSet.StringVarP(&p.project, "project", "p", "", "project path (default: the only connected app)")
	}
}

func (p *clientParams) client() *automation.Client {
	return automation.NewClient(p.server, nil)
}

// resolveProject returns --project, or the project of the only app in
// the directory.
func (p *clientParams) resolveProject(ctx context.Context, client *automation.Client) (string, error) {
	if p.project != "" {
		return p.project, nil
	}
	apps, err := client.Apps(ctx)
	if err != nil {
		return "", err
	}
	switch len(apps) {
	case 0:
		return "", errors.New("no apps are connected")
	case 1:
		return apps[0].ProjectPath, nil
	default:
		projects := make([]string, len(apps))
		for i, app := range apps {
			projects[i] = app.ProjectPath
		}
		return "", fmt.Errorf("several apps are connected, choose one with --project: %s", strings.Join(projects, ", "))
	}
}

func newClientFlags(name string, params *clientParams, withProject bool) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	params.register(flagSet, withProject)
	return flagSet
}

func appsCommand(stdout io.Writer) *cli.Command {
	var params clientParams
	return &cli.Command{
		Name:    "apps",
		Summary: "List apps known to the tooling server",
		Flags:   func() *pflag.FlagSet { return newClientFlags("apps", &params, false) },
		Run: func(ctx context.Context, args []string) error {
			apps, err := params.client().Apps(ctx)
			if err != nil {
				return err
			}
			if params.outputJSON {
				return cli.WriteJSON(stdout, apps)
			}
			if len(apps) == 0 {
				fmt.Fprintln(stdout, "no apps connected")
				return nil
			}
			styles := cli.DefaultStyles()
			table := &cli.Table{Header: []string{"PROJECT", "SESSIONS", "COMPONENTS", "COMMANDS", "PINNED"}}
			for _, app := range apps {
				sessions := make([]string, 0, len(app.Sessions))
				for _, session := range app.Sessions {
					name := session.Platform
					if name == "" {
						name = session.ID
					}
					sessions = append(sessions, name)
				}
				sessionCell := styles.Good.Render(strings.Join(sessions, ", "))
				if len(sessions) == 0 {
					sessionCell = styles.Faint.Render("none")
				}
				pinned := ""
				if app.Pinned {
					pinned = "yes"
				}
				table.Append(app.ProjectPath, sessionCell, strconv.Itoa(app.Components), strconv.Itoa(app.Commands), pinned)
			}
			table.Render(stdout)
			return nil
		},
	}
}

func componentsCommand(stdout io.Writer) *cli.Command {
	var params clientParams
	return &cli.Command{
		Name:    "components",
		Summary: "List an app's components by category",
		Flags:   func() *pflag.FlagSet { return newClientFlags("components", &params, true) },
		Run: func(ctx context.Context, args []string) error {
			client := params.client()
			project, err := params.resolveProject(ctx, client)
			if err != nil {
				return err
			}
			categories, err := client.Components(ctx, project)
			if err != nil {
				return err
			}
			if params.outputJSON {
				return cli.WriteJSON(stdout, categories)
			}
			styles := cli.DefaultStyles()
			for i, category := range categories {
				if i > 0 {
					fmt.Fprintln(stdout)
				}
				fmt.Fprintln(stdout, styles.Heading.Render(category.Name))
				table := &cli.Table{Indent: 2}
				for _, component := range category.Components {
					previews := make([]string, len(component.Previews))
					for j, preview := range component.Previews {
						previews[j] = preview.ShortName
					}
					table.Append(component.ShortName, styles.Faint.Render(component.Kind), strings.Join(previews, ", "))
				}
				table.Render(stdout)
			}
			return nil
		},
	}
}

func commandsCommand(stdout io.Writer) *cli.Command {
	var params clientParams
	return &cli.Command{
		Name:    "commands",
		Summary: "List an app's commands",
		Flags:   func() *pflag.FlagSet { return newClientFlags("commands", &params, true) },
		Run: func(ctx context.Context, args []string) error {
			client := params.client()
			project, err := params.resolveProject(ctx, client)
			if err != nil {
				return err
			}
			commands, err := client.Commands(ctx, project)
			if err != nil {
				return err
			}
			if params.outputJSON {
				return cli.WriteJSON(stdout, commands)
			}
			table := &cli.Table{}
			for _, command := range commands {
				table.Append(command.Name, command.DisplayName)
			}
			table.Render(stdout)
			return nil
		},
	}
}

func navigateCommand() *cli.Command {
	var params clientParams
	return &cli.Command{
		Name:    "navigate",
		Summary: "Show a preview in every app instance that has it",
		Usage:   "hotpreview navigate [flags] <component> <preview>",
		Examples: []cli.Example{
			{Command: "hotpreview navigate --project ~/src/Shop/Shop.csproj Shop.Views.CartPage Empty"},
		},
		Flags: func() *pflag.FlagSet { return newClientFlags("navigate", &params, true) },
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 2 {
				return errors.New("usage: hotpreview navigate [flags] <component> <preview>")
			}
			client := params.client()
			project, err := params.resolveProject(ctx, client)
			if err != nil {
				return err
			}
			return client.Navigate(ctx, automation.NavigateRequest{Project: project, Component: args[0], Preview: args[1]})
		},
	}
}

func invokeCommand() *cli.Command {
	var params clientParams
	return &cli.Command{
		Name:    "invoke",
		Summary: "Run a command in every app instance that has it",
		Usage:   "hotpreview invoke [flags] <command>",
		Flags:   func() *pflag.FlagSet { return newClientFlags("invoke", &params, true) },
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return errors.New("usage: hotpreview invoke [flags] <command>")
			}
			client := params.client()
			project, err := params.resolveProject(ctx, client)
			if err != nil {
				return err
			}
			return client.InvokeCommand(ctx, automation.InvokeRequest{Project: project, Command: args[0]})
		},
	}
}

func snapshotCommand(stdout io.Writer) *cli.Command {
	var params clientParams
	var category string
	return &cli.Command{
		Name:    "snapshot",
		Summary: "Capture preview images",
		Usage:   "hotpreview snapshot [flags] [<component> [<preview>]]",
		Description: `Capture preview images into the snapshots directory next to the
project file. With no arguments every preview is captured; --category
captures one category, including the synthetic Pages and Controls.
Images whose content did not change are left untouched.`,
		Examples: []cli.Example{
			{Description: "Capture all controls", Command: "hotpreview snapshot --category Controls"},
			{Description: "Capture one preview", Command: "hotpreview snapshot Shop.PriceTag Default"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := newClientFlags("snapshot", &params, true)
			flagSet.StringVar(&category, "category", "", "capture every preview in this category")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 2 {
				return errors.New("usage: hotpreview snapshot [flags] [<component> [<preview>]]")
			}
			request := automation.SnapshotRequest{Category: category}
			if len(args) > 0 {
				request.Component = args[0]
			}
			if len(args) > 1 {
				request.Preview = args[1]
			}

			client := params.client()
			project, err := params.resolveProject(ctx, client)
			if err != nil {
				return err
			}
			request.Project = project

			captured, err := client.CaptureSnapshots(ctx, request)
			var apiErr *automation.APIError
			if errors.As(err, &apiErr) && len(apiErr.Snapshots) > 0 {
				captured = apiErr.Snapshots
			}
			if params.outputJSON {
				if writeErr := cli.WriteJSON(stdout, captured); writeErr != nil {
					return writeErr
				}
				return err
			}
			styles := cli.DefaultStyles()
			written := 0
			for _, entry := range captured {
				state := styles.Good.Render("written")
				if entry.Unchanged {
					state = styles.Faint.Render("unchanged")
				} else {
					written++
				}
				fmt.Fprintf(stdout, "%s  %s\n", state, entry.Path)
			}
			fmt.Fprintf(stdout, "%d captured, %d written\n", len(captured), written)
			return err
		},
	}
}

func pinCommand(stdout io.Writer) *cli.Command {
	var params clientParams
	var unpin bool
	return &cli.Command{
		Name:    "pin",
		Summary: "Keep an app listed while none of its instances is connected",
		Usage:   "hotpreview pin [flags] <project>",
		Flags: func() *pflag.FlagSet {
			flagSet := newClientFlags("pin", &params, false)
			flagSet.BoolVar(&unpin, "unpin", false, "remove the pin instead")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return errors.New("usage: hotpreview pin [flags] <project>")
			}
			app, err := params.client().Pin(ctx, args[0], !unpin)
			if err != nil {
				return err
			}
			if params.outputJSON {
				return cli.WriteJSON(stdout, app)
			}
			if app.Pinned {
				fmt.Fprintf(stdout, "pinned %s\n", app.ProjectPath)
			} else {
				fmt.Fprintf(stdout, "unpinned %s\n", app.ProjectPath)
			}
			return nil
		},
	}
}
