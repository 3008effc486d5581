package controller

import (
	"github.com/flow-consensus/ifcore/model/chain"
)

// SetActorWhitelist installs accounts as the actor whitelist. An empty
// whitelist means unrestricted (spec §6 white/blacklist semantics).
func (c *Controller) SetActorWhitelist(accounts []chain.Identifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.ActorWhitelist = toSet(accounts)
}

// ActorWhitelist returns the current actor whitelist.
func (c *Controller) ActorWhitelist() []chain.Identifier {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fromSet(c.config.ActorWhitelist)
}

// SetActorBlacklist installs accounts as the actor blacklist.
func (c *Controller) SetActorBlacklist(accounts []chain.Identifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.ActorBlacklist = toSet(accounts)
}

// ActorBlacklist returns the current actor blacklist.
func (c *Controller) ActorBlacklist() []chain.Identifier {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fromSet(c.config.ActorBlacklist)
}

// SetContractWhitelist installs contracts as the contract whitelist.
func (c *Controller) SetContractWhitelist(contracts []chain.Identifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.ContractWhitelist = toSet(contracts)
}

// ContractWhitelist returns the current contract whitelist.
func (c *Controller) ContractWhitelist() []chain.Identifier {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fromSet(c.config.ContractWhitelist)
}

// SetContractBlacklist installs contracts as the contract blacklist.
func (c *Controller) SetContractBlacklist(contracts []chain.Identifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.ContractBlacklist = toSet(contracts)
}

// ContractBlacklist returns the current contract blacklist.
func (c *Controller) ContractBlacklist() []chain.Identifier {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fromSet(c.config.ContractBlacklist)
}

// ActionBlacklistEntry names one (contract, action) pair.
type ActionBlacklistEntry struct {
	Contract chain.Identifier
	Action   chain.Identifier
}

// SetActionBlacklist installs entries as the action blacklist.
func (c *Controller) SetActionBlacklist(entries []ActionBlacklistEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := make(map[[2]chain.Identifier]bool, len(entries))
	for _, e := range entries {
		m[[2]chain.Identifier{e.Contract, e.Action}] = true
	}
	c.config.ActionBlacklist = m
}

// ActionBlacklist returns the current action blacklist.
func (c *Controller) ActionBlacklist() []ActionBlacklistEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ActionBlacklistEntry, 0, len(c.config.ActionBlacklist))
	for pair := range c.config.ActionBlacklist {
		out = append(out, ActionBlacklistEntry{Contract: pair[0], Action: pair[1]})
	}
	return out
}

// SetKeyBlacklist installs hex-encoded public keys as the key blacklist.
func (c *Controller) SetKeyBlacklist(keys []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	c.config.KeyBlacklist = m
}

// KeyBlacklist returns the current key blacklist.
func (c *Controller) KeyBlacklist() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.config.KeyBlacklist))
	for k := range c.config.KeyBlacklist {
		out = append(out, k)
	}
	return out
}

// SetGreylist installs accounts as the greylist: accounts whose CPU/NET
// usage is exempt from the block-level resource limits (spec §6).
func (c *Controller) SetGreylist(accounts []chain.Identifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.Greylist = toSet(accounts)
}

// Greylist returns the current greylist.
func (c *Controller) Greylist() []chain.Identifier {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fromSet(c.config.Greylist)
}

// SetSubjectiveCPULeewayUs sets the extra CPU budget, in microseconds,
// allowed during speculative (not yet final) execution before a subjective
// CPU failure is raised.
func (c *Controller) SetSubjectiveCPULeewayUs(us int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.SubjectiveCPULeewayUs = us
}

// SubjectiveCPULeewayUs returns the current subjective CPU leeway.
func (c *Controller) SubjectiveCPULeewayUs() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config.SubjectiveCPULeewayUs
}

// SetValidationMode sets the block-validation strictness.
func (c *Controller) SetValidationMode(mode ValidationMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.ValidationMode = mode
}

// ValidationMode returns the current block-validation strictness.
func (c *Controller) ValidationMode() ValidationMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config.ValidationMode
}

// SetReadMode sets the state store's read-mode window behavior.
func (c *Controller) SetReadMode(mode ReadMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.ReadMode = mode
}

// ReadMode returns the current state-store read mode.
func (c *Controller) ReadMode() ReadMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config.ReadMode
}

func toSet(ids []chain.Identifier) map[chain.Identifier]bool {
	m := make(map[chain.Identifier]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func fromSet(m map[chain.Identifier]bool) []chain.Identifier {
	out := make([]chain.Identifier, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	return out
}
