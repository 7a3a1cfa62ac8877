// Package postgres implements the PostgreSQL persistence layer for the
// internship service.
package postgres

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_internships",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_users",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_lessons_tasks",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
		{
			Version: 4,
			Name:    "create_solutions",
			UpSQL:   migration004Up,
			DownSQL: migration004Down,
		},
		{
			Version: 5,
			Name:    "create_pending_forks",
			UpSQL:   migration005Up,
			DownSQL: migration005Down,
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: INTERNSHIPS AND APPLICATIONS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create internships and applications
-- Version: 001

CREATE TABLE IF NOT EXISTS internships (
    id UUID PRIMARY KEY,
    name VARCHAR(200) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status VARCHAR(20) NOT NULL DEFAULT 'OPEN',
    registration_start TIMESTAMP WITH TIME ZONE NOT NULL,
    registration_end TIMESTAMP WITH TIME ZONE NOT NULL,
    start_date TIMESTAMP WITH TIME ZONE NOT NULL,
    end_date TIMESTAMP WITH TIME ZONE NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_internship_status CHECK (status IN ('OPEN', 'CLOSED')),
    CONSTRAINT valid_registration_window CHECK (registration_start < registration_end)
);

CREATE INDEX IF NOT EXISTS idx_internships_status ON internships(status);

CREATE TABLE IF NOT EXISTS applications (
    id UUID PRIMARY KEY,
    internship_id UUID NOT NULL REFERENCES internships(id) ON DELETE CASCADE,
    name VARCHAR(200) NOT NULL,
    phone_number VARCHAR(32) NOT NULL,
    email VARCHAR(200) NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'NEW',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_application_status CHECK (status IN ('NEW', 'APPROVED', 'REJECTED')),
    -- One application per phone per internship: re-application replaces
    -- the old row at the service layer, never duplicates it
    CONSTRAINT uq_applications_phone_internship UNIQUE (phone_number, internship_id)
);

CREATE INDEX IF NOT EXISTS idx_applications_internship ON applications(internship_id);
CREATE INDEX IF NOT EXISTS idx_applications_status ON applications(status);
`

const migration001Down = `
DROP TABLE IF EXISTS applications;
DROP TABLE IF EXISTS internships;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: USERS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create users
-- Version: 002

CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    username VARCHAR(100) NOT NULL UNIQUE,
    name VARCHAR(200) NOT NULL,
    email VARCHAR(200) NOT NULL UNIQUE,
    password_hash VARCHAR(100) NOT NULL,
    role VARCHAR(20) NOT NULL DEFAULT 'USER',
    internship_id UUID REFERENCES internships(id) ON DELETE SET NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_user_role CHECK (role IN ('ADMIN', 'USER', 'ARCHIVED'))
);

CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
CREATE INDEX IF NOT EXISTS idx_users_internship_role ON users(internship_id, role);
`

const migration002Down = `
DROP TABLE IF EXISTS users;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: LESSONS AND TASKS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create lessons and tasks
-- Version: 003

CREATE TABLE IF NOT EXISTS lessons (
    id UUID PRIMARY KEY,
    internship_id UUID NOT NULL REFERENCES internships(id) ON DELETE CASCADE,
    name VARCHAR(200) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    is_published BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_lessons_internship ON lessons(internship_id);
CREATE INDEX IF NOT EXISTS idx_lessons_published ON lessons(internship_id) WHERE is_published;

CREATE TABLE IF NOT EXISTS tasks (
    id UUID PRIMARY KEY,
    lesson_id UUID NOT NULL REFERENCES lessons(id) ON DELETE CASCADE,
    name VARCHAR(200) NOT NULL UNIQUE,
    description TEXT NOT NULL DEFAULT '',
    repository_url VARCHAR(500) NOT NULL,
    repository_id BIGINT NOT NULL,
    -- NULL means the task has not been published yet; a future timestamp
    -- means scheduled publication
    publish_date TIMESTAMP WITH TIME ZONE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_tasks_lesson ON tasks(lesson_id);
CREATE INDEX IF NOT EXISTS idx_tasks_publish_date ON tasks(publish_date) WHERE publish_date IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_tasks_unpublished ON tasks(lesson_id, created_at) WHERE publish_date IS NULL;
`

const migration003Down = `
DROP TABLE IF EXISTS tasks;
DROP TABLE IF EXISTS lessons;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 004: SOLUTIONS
// ══════════════════════════════════════════════════════════════════════════════

const migration004Up = `
-- Migration: Create solutions
-- Version: 004

CREATE TABLE IF NOT EXISTS solutions (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    task_id UUID NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
    -- Natural key: one solution row per fork, regardless of how many
    -- pushes arrive. The unique index is the idempotency mechanism.
    repository_url VARCHAR(500) NOT NULL UNIQUE,
    status VARCHAR(20) NOT NULL DEFAULT 'SENT',
    last_commit_time TIMESTAMP WITH TIME ZONE NOT NULL,
    last_commit_url VARCHAR(500) NOT NULL DEFAULT '',
    comment TEXT NOT NULL DEFAULT '',
    checked_time TIMESTAMP WITH TIME ZONE,
    is_archived BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_solution_status CHECK (status IN ('SENT', 'APPROVED', 'REJECTED'))
);

CREATE INDEX IF NOT EXISTS idx_solutions_user ON solutions(user_id);
CREATE INDEX IF NOT EXISTS idx_solutions_task ON solutions(task_id) WHERE NOT is_archived;
CREATE INDEX IF NOT EXISTS idx_solutions_status ON solutions(status) WHERE NOT is_archived;
`

const migration004Down = `
DROP TABLE IF EXISTS solutions;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 005: PENDING FORKS
// ══════════════════════════════════════════════════════════════════════════════

const migration005Up = `
-- Migration: Create pending_forks
-- Version: 005

CREATE TABLE IF NOT EXISTS pending_forks (
    id UUID PRIMARY KEY,
    task_id UUID NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    username VARCHAR(100) NOT NULL,
    repository_id BIGINT NOT NULL,
    attempts INTEGER NOT NULL DEFAULT 1,
    last_error TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT uq_pending_forks_task_user UNIQUE (task_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_pending_forks_created ON pending_forks(created_at);
`

const migration005Down = `
DROP TABLE IF EXISTS pending_forks;
`
