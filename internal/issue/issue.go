// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"maps"
	"slices"

	"github.com/charmbracelet/glamour"
)

type Id int

const (
	EnvFileParseErrorId Id = iota + 1
	EnvFileUnreadableId
	OptionsFileNotFoundId
	OptionsFileInvalidId
	InvalidOptionsId
	ServiceFileNotFoundId
	ServiceParseErrorId
	FunctionNotFoundId
	UnknownEventId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.extLinks) > 0 {
		extraMd += "\n\n## See also:\n"
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "](" + string(link) + ")\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	envFileParseErrorIssue = &Issue{
		id: EnvFileParseErrorId,
		mdMsg: `
# Failed to parse the dotenv file!

The selected environment file contains a line envinject cannot read.
Deployment continues without injected variables.

## Things you can try:
- Make every non-comment line look like ` + "`KEY=VALUE`" + `
- Close every quoted value:
~~~
GREETING="hello world"
PATTERN='literal $value'
~~~

- Check which file was selected:
~~~
$ envinject resolve --stage production
~~~`,
		extLinks: []HttpLink{"https://github.com/motdotla/dotenv#what-rules-does-the-parsing-engine-follow"},
	}

	envFileUnreadableIssue = &Issue{
		id: EnvFileUnreadableId,
		mdMsg: `
# Cannot read the dotenv file!

The environment file exists but could not be read.

## Things you can try:
- Check the file permissions
- Make sure the path points to a file and not a directory
- Override the path explicitly in your options:
~~~cue
path: "config/.env.shared"
~~~`,
	}

	optionsFileNotFoundIssue = &Issue{
		id: OptionsFileNotFoundId,
		mdMsg: `
# Options file not found!

The file passed with ` + "`--config`" + ` does not exist.

## Things you can try:
- Verify the path is correct
- Drop the flag to use ` + "`envinject.cue`" + ` or ` + "`envinject.toml`" + ` from the current directory
- Show the options currently in effect:
~~~
$ envinject config show
~~~`,
	}

	optionsFileInvalidIssue = &Issue{
		id: OptionsFileInvalidId,
		mdMsg: `
# Invalid options file!

The options file could not be decoded or does not match the schema.

## Example envinject.cue:
~~~cue
base_path: "config/"
expand:    true
include: ["DATABASE_URL", "API_KEY"]
logging:   true
mode:      "function"
~~~`,
	}

	invalidOptionsIssue = &Issue{
		id: InvalidOptionsId,
		mdMsg: `
# Invalid injection options!

One or more option values are not acceptable.

## Rules:
- ` + "`mode`" + ` must be ` + "`function`" + ` or ` + "`provider`" + `
- ` + "`include`" + ` and ` + "`exclude`" + ` entries must be variable names without spaces or ` + "`=`" + `
- ` + "`path`" + ` and ` + "`base_path`" + ` must not be whitespace-only`,
	}

	serviceFileNotFoundIssue = &Issue{
		id: ServiceFileNotFoundId,
		mdMsg: `
# Service descriptor not found!

envinject needs a service descriptor to know which functions receive variables.

## Things you can try:
- Run envinject from the directory that holds your serverless.yml
- Point at the descriptor explicitly:
~~~
$ envinject package -f deploy/serverless.yml
~~~`,
	}

	serviceParseErrorIssue = &Issue{
		id: ServiceParseErrorId,
		mdMsg: `
# Failed to parse the service descriptor!

The service descriptor is not valid YAML or has an unexpected shape.

## Expected shape:
~~~yaml
service: my-service
provider:
  name: aws
  stage: development
  environment:
    LOG_LEVEL: info
functions:
  hello:
    environment:
      DATABASE_URL:
custom:
  injection:
    include: [DATABASE_URL]
~~~`,
	}

	functionNotFoundIssue = &Issue{
		id: FunctionNotFoundId,
		mdMsg: `
# Function not found!

The requested function is not declared in the service descriptor.

## Things you can try:
- Check the spelling of the function name
- List the declared functions:
~~~
$ envinject package --summary
~~~`,
	}

	unknownEventIssue = &Issue{
		id: UnknownEventId,
		mdMsg: `
# Unknown lifecycle event!

envinject only hooks two lifecycle events:
- ` + "`package:initialize`" + `
- ` + "`invoke:local:loadEnvVars`",
	}

	issues = map[Id]*Issue{
		envFileParseErrorIssue.Id():   envFileParseErrorIssue,
		envFileUnreadableIssue.Id():   envFileUnreadableIssue,
		optionsFileNotFoundIssue.Id(): optionsFileNotFoundIssue,
		optionsFileInvalidIssue.Id():  optionsFileInvalidIssue,
		invalidOptionsIssue.Id():      invalidOptionsIssue,
		serviceFileNotFoundIssue.Id(): serviceFileNotFoundIssue,
		serviceParseErrorIssue.Id():   serviceParseErrorIssue,
		functionNotFoundIssue.Id():    functionNotFoundIssue,
		unknownEventIssue.Id():        unknownEventIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return cmp.Compare(a.id, b.id)
	})
}

func Get(id Id) *Issue {
	return issues[id]
}
