package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransfer(t *testing.T) {
	tests := []struct {
		from, to Role
		legal    bool
	}{
		{RoleTriage, RoleSearch, true},
		{RoleTriage, RoleCrawl, true},
		{RoleSearch, RoleTriage, true},
		{RoleCrawl, RoleTriage, true},
		{RoleCrawl, RoleSearch, false},
		{RoleSearch, RoleCrawl, false},
		{RoleTriage, RoleTriage, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.legal, CanTransfer(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestAgentActions(t *testing.T) {
	triage, ok := AgentFor(RoleTriage)
	assert.True(t, ok)
	assert.True(t, triage.Allows(ActionTransferToSearch))
	assert.True(t, triage.Allows(ActionReply))
	assert.False(t, triage.Allows(ActionSearchDocuments))

	searchAgent, _ := AgentFor(RoleSearch)
	assert.True(t, searchAgent.Allows(ActionSearchDocuments))
	assert.False(t, searchAgent.Allows(ActionCrawlWebsite))

	crawlAgent, _ := AgentFor(RoleCrawl)
	assert.True(t, crawlAgent.Allows(ActionCrawlWebsite))
	assert.False(t, crawlAgent.Allows(ActionTransferToSearch))
	assert.Contains(t, crawlAgent.Instructions, "http:// or https://")

	_, ok = AgentFor("unknown")
	assert.False(t, ok)
}
