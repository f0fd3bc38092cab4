package repo

// PROFILES

const getProfile = `SELECT user_id, email, display_name, bio, location, website, profile_picture, created_at, updated_at
FROM profiles WHERE user_id = $1`

const deleteProfile = `DELETE FROM profiles WHERE user_id = $1`

const listMembersByName = `SELECT user_id, display_name, location, profile_picture, created_at
FROM profiles
WHERE ($1 = '' OR display_name ILIKE '%' || $1 || '%' OR location ILIKE '%' || $1 || '%')
ORDER BY display_name ASC`

const listMembersByJoined = `SELECT user_id, display_name, location, profile_picture, created_at
FROM profiles
WHERE ($1 = '' OR display_name ILIKE '%' || $1 || '%' OR location ILIKE '%' || $1 || '%')
ORDER BY created_at DESC`

// EMAIL PREFERENCES

const getPreferencesByToken = `SELECT token, email, newsletters, events, announcements, updated_at, expires_at
FROM email_preferences WHERE token = $1`

const updatePreferences = `UPDATE email_preferences
SET newsletters = $2, events = $3, announcements = $4, updated_at = now()
WHERE token = $1`

const unsubscribeAllByEmail = `UPDATE email_preferences
SET newsletters = false, events = false, announcements = false, updated_at = now()
WHERE email = $1`

const deletePreferencesByEmail = `DELETE FROM email_preferences WHERE email = $1`

const deleteExpiredTokens = `DELETE FROM email_preferences WHERE expires_at < now()`

// EVENTS

const createEvent = `INSERT INTO events (
                    id, title, description, location, starts_at, ends_at, group_id, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO NOTHING
RETURNING id;`

const getEventsByPeriod = `SELECT id, title, description, location, starts_at, ends_at, group_id, created_by, created_at
FROM events
WHERE starts_at >= $1 AND ends_at <= $2
ORDER BY starts_at ASC`

const deleteEvent = `DELETE FROM events WHERE id = $1`

// OUTBOX

const insertOutboxQuery = `
INSERT INTO outbox_event (
  aggregate_id, aggregate_type, event_type, payload, status, attempts, next_attempt_at, created_at
) VALUES ($1,$2,$3, ($4)::jsonb, $5, 0, now(), now())
RETURNING id
`

const reserveBatchSQL = `
WITH picked AS (
	SELECT id
  	FROM outbox_event
  	WHERE status IN ('NEW','FAILED')
		AND next_attempt_at <= now()
    	AND attempts < $3
  	ORDER BY id
  	FOR UPDATE SKIP LOCKED
	LIMIT $2
)
UPDATE outbox_event AS o
SET next_attempt_at = now() + $1::interval
FROM picked
WHERE o.id = picked.id
RETURNING o.id, o.aggregate_id, o.aggregate_type, o.event_type, o.payload, o.status, o.attempts, o.next_attempt_at, o.created_at;
`

const markFailedSQL = `
UPDATE outbox_event
SET status=$2, attempts=attempts+1, next_attempt_at=$3
WHERE id=$1`

const markGaveUpSQL = `
UPDATE outbox_event
SET status=$2, attempts=attempts+1, next_attempt_at = now()
WHERE id=$1
`

const markSentSQL = `UPDATE outbox_event SET status=$2 WHERE id=$1`
