package model

import "time"

// Employee roles.  Operators run the gate and the drawer; managers
// additionally perform corrections, backfills and account creation.
const (
    RoleManager  = "MANAGER"
    RoleOperator = "OPERATOR"
)

// Employee represents a row in the `employees` table.  Employees
// authenticate against this table to open shifts and record vehicle
// movements.  Passwords are stored as bcrypt hashes only.
//
// Fields:
//  ID           – primary key identifier of the employee.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  FullName     – display name printed on shift reports.
//  Role         – MANAGER or OPERATOR.
//  IsActive     – whether the account may log in.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Employee struct {
    ID           uint64    // employees.id
    Email        string    // employees.email
    PasswordHash string    // employees.password_hash
    FullName     string    // employees.full_name
    Role         string    // employees.role
    IsActive     bool      // employees.is_active
    CreatedAt    time.Time // employees.created_at
    UpdatedAt    time.Time // employees.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to an employee and carries metadata for
// expiry and revocation.  The plain token is not stored; only its
// SHA-256 hash.
//
// Fields:
//  ID         – primary key identifier.
//  EmployeeID – owner of the token.
//  TokenHash  – SHA-256 hex digest of the token value.
//  ExpiresAt  – expiration timestamp of the token.
//  RevokedAt  – when the token was revoked (null if still active).
//  CreatedAt  – timestamp of creation.
type RefreshToken struct {
    ID         uint64     // refresh_tokens.id
    EmployeeID uint64     // refresh_tokens.employee_id
    TokenHash  string     // refresh_tokens.token_hash
    ExpiresAt  time.Time  // refresh_tokens.expires_at
    RevokedAt  *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt  time.Time  // refresh_tokens.created_at
}
