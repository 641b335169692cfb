// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package dispatch

import "slices"

// Role is a conversational persona of the dispatcher.
type Role string

const (
	RoleTriage Role = "triage"
	RoleSearch Role = "search"
	RoleCrawl  Role = "crawl"
)

// Action is something a role may do in response to an utterance.
type Action string

const (
	ActionReply             Action = "reply"
	ActionTransferToSearch  Action = "transfer_to_search"
	ActionTransferToCrawler Action = "transfer_to_crawler"
	ActionTransferToTriage  Action = "transfer_to_triage"
	ActionSearchDocuments   Action = "search_documents"
	ActionCrawlWebsite      Action = "crawl_website"
)

// Agent describes a role: its display name, persona instructions and the
// actions it may take. Replying directly is always allowed.
type Agent struct {
	Role         Role
	Name         string
	Instructions string
	Actions      []Action
}

// Allows reports whether the agent may take action.
func (a Agent) Allows(action Action) bool {
	return action == ActionReply || slices.Contains(a.Actions, action)
}

var agents = map[Role]Agent{
	RoleTriage: {
		Role: RoleTriage,
		Name: "Document Management Agent",
		Instructions: `You are a document management assistant that helps users manage their documents.
Determine which specialized agent should handle the user's request:
- For searching existing documents, transfer to the Search Agent
- For crawling websites and adding new content, transfer to the Crawler Agent

Ask clarifying questions if the user's intent is not clear.`,
		Actions: []Action{ActionTransferToSearch, ActionTransferToCrawler},
	},
	RoleSearch: {
		Role: RoleSearch,
		Name: "Search Agent",
		Instructions: `You are a search specialist that helps users find documents.
- Help users formulate effective search queries
- Present results in a clear format
- Ask clarifying questions if the search query is too vague`,
		Actions: []Action{ActionSearchDocuments, ActionTransferToTriage},
	},
	RoleCrawl: {
		Role: RoleCrawl,
		Name: "Crawler Agent",
		Instructions: `You are a web crawler specialist that helps users add documents.
- Help users crawl websites and store content
- Ask for the website URL if not provided
- Verify the URL format before crawling
- Make sure URLs start with http:// or https://
- Warn users that crawling may take a few minutes for large sites`,
		Actions: []Action{ActionCrawlWebsite, ActionTransferToTriage},
	},
}

// AgentFor returns the agent definition of role.
func AgentFor(role Role) (Agent, bool) {
	a, ok := agents[role]
	return a, ok
}

// transitions lists the legal role changes. Search and Crawl only reach
// each other through Triage.
var transitions = map[Role][]Role{
	RoleTriage: {RoleSearch, RoleCrawl},
	RoleSearch: {RoleTriage},
	RoleCrawl:  {RoleTriage},
}

// CanTransfer reports whether the dispatcher may move from one role to another.
func CanTransfer(from, to Role) bool {
	return slices.Contains(transitions[from], to)
}

// transferTarget returns the role a transfer action moves to.
func transferTarget(action Action) (Role, bool) {
	switch action {
	case ActionTransferToSearch:
		return RoleSearch, true
	case ActionTransferToCrawler:
		return RoleCrawl, true
	case ActionTransferToTriage:
		return RoleTriage, true
	default:
		return "", false
	}
}
