package main

func ce(err error) {
	if err != nil {
		panic(err)
	}
}
