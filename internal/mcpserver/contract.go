package mcpserver

// MarketRules describes the canonical rules of the world economy that
// LLM consumers should follow when creating worlds or reasoning about
// trades.
const MarketRules = `# Infinity Spark Market Rules

Every world minted in Infinity Spark obeys these rules.

## Worlds and tokens

1. **One world, one token.** Creating a world mints exactly one ownership
   token with the same value. The token id is stable for the world's
   lifetime, even across sales.
2. **Value is computed, not chosen.** A world's value derives from its
   tool count, page count, and rarity attributes. Adding a page credits
   the owner and raises both the world's value and its token's value.
3. **The owner wallet is authoritative.** Collaborator lists are
   advisory; only the ` + "`ownerWallet`" + ` field decides who may edit,
   list, or trade a world.

## Currency

4. **Infinity (` + "`∞`" + `) is the spendable currency.** New wallets
   start with 10000 infinity. Portfolio balance is a separate running
   total of the value of owned worlds and is never spent.
5. **No negative balances.** A purchase that costs more infinity than
   the wallet holds is rejected outright and changes nothing.

## Marketplace

6. **Only listed worlds can be bought.** Listing requires ownership and
   a positive asking price; unlisting clears the price.
7. **Purchases are atomic.** Debit, token mint, and ownership transfer
   happen together or not at all.
8. **Cart checkout is best-effort.** The aggregate price must fit the
   balance up front; after that each item re-validates and may be
   skipped (already sold, delisted, or no longer affordable). Skips do
   not abort the rest of the batch.

## Trading

9. **Trades swap ownership only.** No infinity moves; each side keeps
   its token but the owner field flips. The ledger records the trade
   with a zero amount.
10. **Terminal offers stay terminal.** Once accepted, rejected, or
    cancelled, an offer never changes state again and re-acceptance has
    no effect.

## Tool usage

- Call ` + "`list_worlds`" + ` or ` + "`search_worlds`" + ` before
  ` + "`create_world`" + ` to avoid minting near-duplicates.
- ` + "`create_world`" + ` queries should be short noun phrases
  ("a floating crystal archive", "neon jellyfish reef"), not prompts.
- Check ` + "`wallet_balance`" + ` before recommending purchases.
`
