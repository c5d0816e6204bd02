package storage

const (
	insertSessionSQL = `
INSERT INTO sessions (run_id,
                      created_at,
                      player,
                      source,
                      config)
VALUES (?, CURRENT_TIMESTAMP, ?, ?, ?)`

	selectSessionSQL = `
SELECT id,
       run_id,
       created_at,
       player,
       source,
       config
FROM sessions
WHERE id = ?`

	selectSessionsSQL = `
SELECT id,
       run_id,
       created_at,
       player,
       source,
       config
FROM sessions
ORDER BY created_at, id`

	selectNextSeqSQL = `
SELECT COALESCE(MAX(seq) + 1, 0)
FROM samples
WHERE session_id = ?`

	insertSamplesSQL = `
INSERT INTO samples (session_id,
                     seq,
                     timestamp,
                     player,
                     latitude,
                     longitude,
                     accel_x,
                     accel_y,
                     accel_z)
VALUES `

	sampleValuesPlaceholder = "(?, ?, ?, ?, ?, ?, ?, ?, ?)"

	selectSamplesSQL = `
SELECT seq,
       timestamp,
       player,
       latitude,
       longitude,
       accel_x,
       accel_y,
       accel_z
FROM samples
WHERE session_id = ?`

	upsertSummarySQL = `
INSERT INTO summaries (session_id,
                       high_speed_mps,
                       sprint_mps,
                       acceleration_mps2,
                       sample_count,
                       duration_s,
                       total_distance_km,
                       high_speed_distance_km,
                       average_speed_kmh,
                       max_speed_kmh,
                       sprint_count,
                       high_acceleration_count,
                       high_deceleration_count,
                       accelerometer)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (session_id) DO UPDATE SET high_speed_mps          = excluded.high_speed_mps,
                                       sprint_mps              = excluded.sprint_mps,
                                       acceleration_mps2       = excluded.acceleration_mps2,
                                       sample_count            = excluded.sample_count,
                                       duration_s              = excluded.duration_s,
                                       total_distance_km       = excluded.total_distance_km,
                                       high_speed_distance_km  = excluded.high_speed_distance_km,
                                       average_speed_kmh       = excluded.average_speed_kmh,
                                       max_speed_kmh           = excluded.max_speed_kmh,
                                       sprint_count            = excluded.sprint_count,
                                       high_acceleration_count = excluded.high_acceleration_count,
                                       high_deceleration_count = excluded.high_deceleration_count,
                                       accelerometer           = excluded.accelerometer`

	selectSummarySQL = `
SELECT session_id,
       high_speed_mps,
       sprint_mps,
       acceleration_mps2,
       sample_count,
       duration_s,
       total_distance_km,
       high_speed_distance_km,
       average_speed_kmh,
       max_speed_kmh,
       sprint_count,
       high_acceleration_count,
       high_deceleration_count,
       accelerometer
FROM summaries
WHERE session_id = ?`
)
