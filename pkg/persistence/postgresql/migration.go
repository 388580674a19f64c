package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE templates (
				id VARCHAR(255) PRIMARY KEY,
				body JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE TABLE crops (
				id VARCHAR(255) PRIMARY KEY,
				body JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE TABLE tasks (
				id VARCHAR(255) PRIMARY KEY,
				body JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);
		`,
		2: `
			CREATE INDEX idx_crops_kind ON crops ((body->>'kind'));
			CREATE INDEX idx_tasks_status ON tasks ((body->>'status'));
		`,
	}
}
