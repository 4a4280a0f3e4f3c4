package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// schema таблицы, которые читает и пишет генератор планов
const schema = `
CREATE TABLE IF NOT EXISTS public.users (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS public.exercises (
	id                   BIGSERIAL PRIMARY KEY,
	name                 TEXT NOT NULL UNIQUE,
	muscle_group         TEXT NOT NULL,
	weight_type          TEXT NOT NULL DEFAULT 'TOTAL'
	                     CHECK (weight_type IN ('TOTAL', 'PER_SIDE', 'BODYWEIGHT', 'TIME')),
	movement_pattern     TEXT NOT NULL DEFAULT 'ISOLATION'
	                     CHECK (movement_pattern IN ('PUSH', 'PULL', 'SQUAT', 'HINGE', 'ISOLATION')),
	bodyweight_factor    NUMERIC(4,2),
	ref_1rm_beginner     NUMERIC(6,1),
	ref_1rm_intermediate NUMERIC(6,1),
	ref_1rm_advanced     NUMERIC(6,1),
	ref_1rm_elite        NUMERIC(6,1),
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS exercises_name_ci_idx ON public.exercises (lower(trim(name)));

CREATE TABLE IF NOT EXISTS public.exercise_equipment (
	exercise_id BIGINT NOT NULL REFERENCES public.exercises(id) ON DELETE CASCADE,
	equipment   TEXT NOT NULL,
	PRIMARY KEY (exercise_id, equipment)
);

CREATE TABLE IF NOT EXISTS public.user_equipment (
	user_id   BIGINT NOT NULL REFERENCES public.users(id) ON DELETE CASCADE,
	equipment TEXT NOT NULL,
	PRIMARY KEY (user_id, equipment)
);

CREATE TABLE IF NOT EXISTS public.training_sessions (
	id           BIGSERIAL PRIMARY KEY,
	user_id      BIGINT NOT NULL REFERENCES public.users(id) ON DELETE CASCADE,
	session_date DATE NOT NULL,
	is_deload    BOOLEAN NOT NULL DEFAULT false
);
CREATE INDEX IF NOT EXISTS training_sessions_user_date_idx ON public.training_sessions (user_id, session_date);

CREATE TABLE IF NOT EXISTS public.sets (
	id          BIGSERIAL PRIMARY KEY,
	session_id  BIGINT NOT NULL REFERENCES public.training_sessions(id) ON DELETE CASCADE,
	exercise_id BIGINT NOT NULL REFERENCES public.exercises(id),
	weight      NUMERIC(6,2),
	reps        INTEGER,
	rpe         NUMERIC(3,1),
	is_warmup   BOOLEAN NOT NULL DEFAULT false
);

CREATE TABLE IF NOT EXISTS public.body_weights (
	id          BIGSERIAL PRIMARY KEY,
	user_id     BIGINT NOT NULL REFERENCES public.users(id) ON DELETE CASCADE,
	recorded_on DATE NOT NULL,
	weight_kg   NUMERIC(5,2) NOT NULL
);

CREATE TABLE IF NOT EXISTS public.plans (
	id             BIGSERIAL PRIMARY KEY,
	user_id        BIGINT NOT NULL REFERENCES public.users(id) ON DELETE CASCADE,
	name           TEXT NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	group_id       UUID,
	group_name     TEXT,
	group_position INTEGER NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS plans_group_idx ON public.plans (group_id);

CREATE TABLE IF NOT EXISTS public.plan_exercises (
	id             BIGSERIAL PRIMARY KEY,
	plan_id        BIGINT NOT NULL REFERENCES public.plans(id) ON DELETE CASCADE,
	exercise_id    BIGINT NOT NULL REFERENCES public.exercises(id),
	training_day   TEXT NOT NULL,
	position       INTEGER NOT NULL,
	target_sets    INTEGER NOT NULL,
	target_reps    TEXT NOT NULL,
	rest_seconds   INTEGER NOT NULL,
	superset_group INTEGER,
	note           TEXT
);

CREATE TABLE IF NOT EXISTS public.llm_usage (
	id            BIGSERIAL PRIMARY KEY,
	user_id       BIGINT REFERENCES public.users(id) ON DELETE SET NULL,
	endpoint      TEXT NOT NULL
	              CHECK (endpoint IN ('plan_generate', 'plan_optimize', 'live_guidance', 'other')),
	model         TEXT NOT NULL,
	tokens_in     INTEGER NOT NULL DEFAULT 0,
	tokens_out    INTEGER NOT NULL DEFAULT 0,
	cost_eur      NUMERIC(12,6) NOT NULL DEFAULT 0,
	success       BOOLEAN NOT NULL,
	is_retry      BOOLEAN NOT NULL DEFAULT false,
	error_message TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Migrate создаёт недостающие таблицы и индексы
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ошибка миграции: %w", err)
	}
	return nil
}
