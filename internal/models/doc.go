// Package models defines the core domain models for splitledger.
//
// # Models
//
//   - Expense: a shared expense in a group or a direct pair, with a split
//     scheme and participant list
//   - ExpensePayer: who actually paid, and how much, in the expense currency
//   - ExpenseSplit: one user's owed share, in the expense currency and
//     normalized into that user's default currency
//   - Settlement: a manually recorded payment between two users, reversible
//     exactly once
//   - User: an account with a default currency used for balance normalization
//   - Group: a reusable participant list that owns expenses and settlements
//
// # Design Principles
//
//  1. All models are value types; the engine reads snapshots and never
//     mutates shared state.
//  2. Relationships use ID strings (UUID format) instead of pointers to
//     avoid circular references.
//  3. Normalized amounts carry the conversion rate and timestamp so the
//     arithmetic behind a balance can be audited later.
package models
