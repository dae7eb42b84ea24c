package repository

const (
	getSettingsQuery = `SELECT user_id, upload_type, preset, crf, notify_done, updated_at
		FROM user_settings
		WHERE user_id = $1`

	upsertSettingsQuery = `INSERT INTO user_settings (user_id, upload_type, preset, crf, notify_done, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (user_id) DO UPDATE
		SET upload_type = EXCLUDED.upload_type,
		    preset      = EXCLUDED.preset,
		    crf         = EXCLUDED.crf,
		    notify_done = EXCLUDED.notify_done,
		    updated_at  = now()
		RETURNING user_id, upload_type, preset, crf, notify_done, updated_at`
)
